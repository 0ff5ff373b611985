package snipsync

import (
	"github.com/bianoble/snipsync/internal/engine"
	"github.com/bianoble/snipsync/internal/region"
)

// Type aliases re-export internal result types as the public API.
// Users import "github.com/bianoble/snipsync/pkg/snipsync" and use
// snipsync.SyncResult, snipsync.Finding, etc.

type FindingKind = engine.FindingKind
type Finding = engine.Finding
type DocReport = engine.DocReport
type Totals = engine.Totals
type SyncResult = engine.SyncResult
type Region = region.Region
type FileError = region.FileError

const (
	FindingResolved   = engine.FindingResolved
	FindingUnchanged  = engine.FindingUnchanged
	FindingOK         = engine.FindingOK
	FindingUnmatched  = engine.FindingUnmatched
	FindingAmbiguous  = engine.FindingAmbiguous
	FindingDrift      = engine.FindingDrift
	FindingBrokenRef  = engine.FindingBrokenRef
	FindingStructural = engine.FindingStructural
	FindingUnmarked   = engine.FindingUnmarked
	FindingWarning    = engine.FindingWarning
)
