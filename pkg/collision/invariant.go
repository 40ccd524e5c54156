package collision

import "fmt"

// invariant panics when cond is false. It guards conditions whose violation
// is a programmer error, such as releasing a shape that was never acquired.
func invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(fmt.Sprintf("collision: invariant violated: "+format, args...))
	}
}

// debugAssert is invariant for hot paths. It compiles to nothing unless the
// package is built with the debug tag.
func debugAssert(cond bool, format string, args ...any) {
	if debugAsserts && !cond {
		panic(fmt.Sprintf("collision: assertion failed: "+format, args...))
	}
}
