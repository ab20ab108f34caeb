// Package fec defines the forward-error-correction boundary of the tonelink
// codec.
//
// The correction algorithm itself is an external collaborator: anything that
// implements Codec can be attached to a configuration with config.WithFEC.
// The package ships two building blocks:
//
//   - Passthrough: carries the payload unchanged (the default).
//   - CRC8: appends a checksum around any inner codec so residual errors are
//     reported as *UncorrectableError with the best-effort payload attached.
//
// Example:
//
//	codec := fec.NewCRC8(nil)
//	cfg, err := config.New(config.DefaultParams(), config.WithFEC(codec))
//
// Failures are classified with errors.Is(err, fec.ErrUncorrectable); use
// errors.As to reach the partial payload.
package fec
