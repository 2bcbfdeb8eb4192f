// Package cargo treats a Cargo workspace as a solution.
//
// Literal workspace members are projects. Glob members such as "crates/*"
// become folders holding the crates they match, so the tree mirrors how
// the workspace is declared. A Cargo.toml with only a [package] table is a
// one-crate solution.
//
// References are the keys of the dependency tables in file order; declared
// types come from a lexer pass over src/**/*.rs.
package cargo
