package kernel

import "github.com/chewxy/math32"

func length(x, y, z float32) float32 {
	return math32.Sqrt(x*x + y*y + z*z)
}
