package pargo

// Plan is the decision taken for one invocation
type Plan struct {
	Root          string // located project root
	Delegate      bool   // no Pargo.toml: hand everything to cargo
	NeedsInit     bool   // the nested cargo project does not exist yet
	Script        string // script path as declared in Pargo.toml
	ScriptStale   bool   // declared script differs from the nested copy
	ManifestStale bool   // rewritten dependencies differ from the nested Cargo.toml
	NoArtifact    bool   // the compiled script is missing
}

// ShouldCompile reports whether the nested project must be rebuilt before running
func (p *Plan) ShouldCompile() bool {
	return p.NeedsInit || p.ScriptStale || p.ManifestStale || p.NoArtifact
}
