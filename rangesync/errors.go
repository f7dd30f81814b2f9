package rangesync

import "errors"

// Sentinel errors returned by Reconciler. Every one of them is a protocol or
// programmer violation - none are recoverable, and a Reconciler that returns
// any of them (except from AddItem/Seal validation before sealing) should be
// discarded rather than reused.
var (
	// ErrBadIDSize is returned by New when idSize is outside [MinIDSize,
	// MaxIDSize], or by AddItem when the supplied id does not have exactly
	// idSize bytes.
	ErrBadIDSize = errors.New("rangesync: bad id size")

	// ErrAlreadySealed is returned by AddItem or Seal once the Reconciler
	// has already been sealed.
	ErrAlreadySealed = errors.New("rangesync: already sealed")

	// ErrNotSealed is returned by Initiate or Reconcile before Seal has
	// been called.
	ErrNotSealed = errors.New("rangesync: not sealed")

	// ErrFrameSizeTooSmall is returned by Initiate when frameSizeLimit is
	// in (0, 1024).
	ErrFrameSizeTooSmall = errors.New("rangesync: frame size limit too small")

	// ErrInitiatorMismatch is returned when the responder-form Reconcile
	// is called on an initiator, or the initiator-form ReconcileInitiator
	// is called on a responder.
	ErrInitiatorMismatch = errors.New("rangesync: initiator/responder mismatch")

	// ErrUnexpectedIDListResponse is returned when a responder receives a
	// frame tuple in IdListResponse mode.
	ErrUnexpectedIDListResponse = errors.New("rangesync: unexpected id list response")

	// ErrUnexpectedMode is returned when a frame tuple carries a mode
	// value outside the closed set {Skip, Fingerprint, IdList,
	// IdListResponse}.
	ErrUnexpectedMode = errors.New("rangesync: unexpected mode")

	// ErrParseUnderrun is returned whenever decoding a varint or a fixed
	// byte block runs past the end of the frame.
	ErrParseUnderrun = errors.New("rangesync: parse ends prematurely")

	// ErrIDTooBig is returned when a decoded bound's declared prefix
	// length exceeds MaxIDSize bytes.
	ErrIDTooBig = errors.New("rangesync: id too big")
)
