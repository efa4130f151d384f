package script

import "errors"

var (
	// ErrInvalidThreshold indicates an m-of-n combination the script
	// system cannot express.
	ErrInvalidThreshold = errors.New("script: invalid signature threshold")

	// ErrInvalidPubKey indicates a public key that is not a valid
	// hex-encoded EC point.
	ErrInvalidPubKey = errors.New("script: invalid public key")

	// ErrInvalidAddress indicates an address that cannot be decoded for
	// the configured network.
	ErrInvalidAddress = errors.New("script: invalid address")

	// ErrUnsupportedAddress indicates an address whose script type is not
	// recognized.
	ErrUnsupportedAddress = errors.New("script: unsupported address type")

	// ErrScriptBuild indicates script or transaction construction failed.
	ErrScriptBuild = errors.New("script: script build failed")

	// ErrInvalidArtifact indicates the serialized transaction artifact is
	// malformed or lacks required per-input data.
	ErrInvalidArtifact = errors.New("script: invalid transaction artifact")

	// ErrInputRange indicates an input index outside the artifact.
	ErrInputRange = errors.New("script: input index out of range")

	// ErrUnknownSigner indicates a public key that is not part of the
	// input's witness script.
	ErrUnknownSigner = errors.New("script: public key not in witness script")

	// ErrInvalidSignature indicates a signature that fails validation
	// against the input digest and claimed public key.
	ErrInvalidSignature = errors.New("script: invalid signature")

	// ErrDuplicateSignature indicates the public key already signed the
	// input.
	ErrDuplicateSignature = errors.New("script: duplicate signature for input")

	// ErrFinalize indicates input finalization or extraction failed.
	ErrFinalize = errors.New("script: finalize failed")
)
