package config

// Config represents the snipsync.yaml configuration file.
type Config struct {
	Version int `yaml:"version"`

	// Docs is the documentation tree root, relative to the config file.
	Docs string `yaml:"docs"`

	// Samples is the samples source tree root, relative to the config file.
	Samples string `yaml:"samples"`

	// Exclude lists directories under Docs that are never scanned
	// (project-management artifacts, historical task logs).
	Exclude []string `yaml:"exclude,omitempty"`

	// Languages are the fence tags treated as compilable code. A fenced
	// block with one of these tags and no governing marker fails
	// verification.
	Languages []string `yaml:"languages"`

	// Fence is the tag emitted on rewritten snippet fences.
	// Defaults to the first entry of Languages.
	Fence string `yaml:"fence,omitempty"`

	// Region selects the delimiter syntax for the samples tree.
	Region RegionConfig `yaml:"region,omitempty"`

	// Workers bounds parallel file scanning. 0 means the CPU count.
	Workers int `yaml:"workers,omitempty"`

	// FailFast aborts the run on the first structural error.
	FailFast bool `yaml:"fail_fast,omitempty"`

	// PseudoWarnRatio warns when a document's pseudo blocks exceed this
	// fraction of its code blocks. 0 disables the policy.
	PseudoWarnRatio float64 `yaml:"pseudo_warn_ratio,omitempty"`
}

// RegionConfig selects the region delimiter syntax: either a built-in
// syntax by name, or a custom start/end pattern pair. The start pattern
// must capture the region name in its first group.
type RegionConfig struct {
	Syntax string `yaml:"syntax,omitempty"`
	Start  string `yaml:"start,omitempty"`
	End    string `yaml:"end,omitempty"`
}
