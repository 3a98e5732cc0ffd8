package domain

import "slices"

func (m ArtifactMeta) clone() ArtifactMeta {
	m.Extra = cloneExtra(m.Extra)
	return m
}

// cloneExtra copies the nested maps and slices a decoded JSON or YAML value
// can hold. Other values are shared.
func cloneExtra(extra map[string]any) map[string]any {
	if extra == nil {
		return nil
	}
	out := make(map[string]any, len(extra))
	for k, v := range extra {
		out[k] = cloneValue(v)
	}
	return out
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return cloneExtra(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = cloneValue(e)
		}
		return out
	default:
		return v
	}
}

// Clone implements StageArtifact.
func (p *ProjectPlan) Clone() StageArtifact {
	if p == nil {
		return (*ProjectPlan)(nil)
	}
	c := *p
	c.ArtifactMeta = p.ArtifactMeta.clone()
	c.Tasks = slices.Clone(p.Tasks)
	return &c
}

// Clone implements StageArtifact.
func (d *DesignSpec) Clone() StageArtifact {
	if d == nil {
		return (*DesignSpec)(nil)
	}
	c := *d
	c.ArtifactMeta = d.ArtifactMeta.clone()
	if d.Components != nil {
		c.Components = make([]DesignComponent, len(d.Components))
		for i, comp := range d.Components {
			comp.Interfaces = slices.Clone(comp.Interfaces)
			c.Components[i] = comp
		}
	}
	c.DataModels = slices.Clone(d.DataModels)
	c.APIEndpoints = slices.Clone(d.APIEndpoints)
	return &c
}

// Clone implements StageArtifact.
func (b *GeneratedCodeBundle) Clone() StageArtifact {
	if b == nil {
		return (*GeneratedCodeBundle)(nil)
	}
	c := *b
	c.ArtifactMeta = b.ArtifactMeta.clone()
	c.Files = slices.Clone(b.Files)
	if b.FileStructure != nil {
		c.FileStructure = make(map[string][]string, len(b.FileStructure))
		for dir, names := range b.FileStructure {
			c.FileStructure[dir] = slices.Clone(names)
		}
	}
	c.ImplementedSemanticUnits = slices.Clone(b.ImplementedSemanticUnits)
	c.ImplementedComponents = slices.Clone(b.ImplementedComponents)
	c.ExternalDependencies = slices.Clone(b.ExternalDependencies)
	return &c
}

// Clone implements StageArtifact.
func (r *TestReport) Clone() StageArtifact {
	if r == nil {
		return (*TestReport)(nil)
	}
	c := *r
	c.ArtifactMeta = r.ArtifactMeta.clone()
	c.Failures = slices.Clone(r.Failures)
	return &c
}

// Clone implements StageArtifact.
func (p *PostmortemReport) Clone() StageArtifact {
	if p == nil {
		return (*PostmortemReport)(nil)
	}
	c := *p
	c.ArtifactMeta = p.ArtifactMeta.clone()
	c.Lessons = slices.Clone(p.Lessons)
	return &c
}
