//go:build !debug

package collision

const debugAsserts = false
