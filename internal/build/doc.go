// Package build produces the canonical asset tree before the server starts:
// it wipes the output root, downloads the script bundle and compiles plus
// minifies the stylesheet. Any failure here aborts startup.
package build
