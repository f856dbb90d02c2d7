// Package routepath holds the path rules shared by the exporter and the
// preview server.
//
// Route groups are directory or segment names wrapped in parentheses, such
// as "(tabs)" or "(auth)". They organize route files without affecting the
// served URL, so SanitizeName removes them when computing the canonical path:
//
//	SanitizeName("(tabs)/home")     // "home"
//	SanitizeName("blog/(admin)/new") // "blog/new"
//
// CanonicalizePath normalizes request paths before they are mapped onto an
// export directory, rejecting inputs that could escape it.
package routepath
