// Package vs reads Visual Studio solution files.
//
// Both the classic text format (.sln) and the XML format (.slnx) are
// supported. A parsed [Solution] implements solution.Solution; pair it with
// an msbuild workspace to open the listed projects:
//
//	sol, err := vs.Open("Shop.sln")
//	host := solution.Host{Solution: sol, Workspace: msbuild.NewWorkspace(logger)}
//
// Solution folders become folder nodes. Relative project paths are
// resolved against the solution directory; Windows separators are
// accepted on every platform.
package vs
