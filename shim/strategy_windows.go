//go:build windows

package shim

// defaultStrategy runs entry scripts inline. Windows hosts historically
// call the shim from their own dispatch thread and expect Execute to mean
// "run here"; keep that contract.
func defaultStrategy() strategy {
	return inlineStrategy{}
}
