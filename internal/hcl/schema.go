package hcl

// fileRoot decodes every top-level block a manifest file may contain.
// Anything else is a decode error.
type fileRoot struct {
	Build     *buildBlock      `hcl:"build,block"`
	Driver    *driverBlock     `hcl:"driver,block"`
	Platforms []*platformBlock `hcl:"platform,block"`
	Linker    *linkerBlock     `hcl:"linker,block"`
	Layout    *layoutBlock     `hcl:"layout,block"`
	Units     []*unitBlock     `hcl:"unit,block"`
}

type buildBlock struct {
	KeepGoing *bool   `hcl:"keep_going,optional"`
	MaxCycles *int    `hcl:"max_cycles,optional"`
	Jobs      *int    `hcl:"jobs,optional"`
	UnitGraph *string `hcl:"unit_graph,optional"`
}

type driverBlock struct {
	Command string            `hcl:"command"`
	Args    []string          `hcl:"args,optional"`
	Dir     string            `hcl:"dir,optional"`
	Env     map[string]string `hcl:"env,optional"`
}

type platformBlock struct {
	Name   string `hcl:"name,label"`
	Triple string `hcl:"triple,optional"`
}

type linkerBlock struct {
	Path    string   `hcl:"path,optional"`
	Entry   string   `hcl:"entry,optional"`
	Arch    []string `hcl:"arch,optional"`
	Flags   []string `hcl:"flags,optional"`
	LinkMap string   `hcl:"link_map,optional"`
}

type layoutBlock struct {
	Root        string `hcl:"root"`
	BinaryName  string `hcl:"binary_name,optional"`
	LibraryName string `hcl:"library_name,optional"`
}

type unitBlock struct {
	PackageID string       `hcl:"package_id,label"`
	Platforms []string     `hcl:"platforms"`
	Target    *targetBlock `hcl:"target,block"`
}

type targetBlock struct {
	Name       string   `hcl:"name"`
	Kind       []string `hcl:"kind"`
	CrateTypes []string `hcl:"crate_types,optional"`
	SrcPath    string   `hcl:"src_path,optional"`
}
