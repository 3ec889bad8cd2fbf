// Package errors provides structured, coded error messages for vpatch.
//
// Errors carry a code (e.g., "E101") that maps to:
//   - A short message describing the problem
//   - A detailed explanation
//   - A documentation URL
//
// Tree validation errors also carry the path of the offending node,
// such as "div/ul[1]/li[3]", so a malformed tree can be fixed without
// bisecting it by hand.
//
// # Error Categories
//
//   - tree: malformed virtual trees rejected by validation
//   - protocol: wire protocol errors (truncated frames, unknown ops)
//   - config: vpatch.json problems
//   - cli: command line usage errors
//
// # Usage
//
//	err := errors.New("E101").
//	    WithPath("div/ul[1]").
//	    WithSuggestion("Use either text or children, not both")
//
//	fmt.Println(err.Format())
package errors
