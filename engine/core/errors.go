package core

import (
	"errors"
)

var (
	ErrUnknownBone           = errors.New("unknown bone name")
	ErrInvalidHierarchy      = errors.New("invalid bone hierarchy")
	ErrPoseSizeMismatch      = errors.New("pose mismatch")
	ErrEmptyTimeline         = errors.New("no keyframes recorded")
	ErrDuplicateKeyframeTime = errors.New("keyframe already exists at this time, overwritten")
	ErrInvalidKeyframeTime   = errors.New("keyframe time must be a non-negative number")
	ErrBoneCountMismatch     = errors.New("bone count mismatch")
	ErrNotRotating           = errors.New("no bone is being rotated")
	ErrNoController          = errors.New("no controller attached to hand")
	ErrUnknownAsset          = errors.New("unknown asset handle")
)
