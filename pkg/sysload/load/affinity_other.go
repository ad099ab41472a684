//go:build !linux

package load

func pinToCPU(int) error {
	return ErrPinningUnsupported
}
