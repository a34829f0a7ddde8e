package walker

// FilesystemOptions configures a traversal (spec.md §4.2).
type FilesystemOptions struct {
	IncludeHidden      bool
	FollowSymlinks     bool
	RespectIgnoreFiles bool
	GitIgnore          bool
	GitGlobal          bool
	GitExclude         bool
	GlobalIgnores      map[string]struct{} // base names always pruned, e.g. "node_modules"
	Threads            int                 // 0 = available parallelism
	MaxDepth           *int                // nil = unbounded
	AllowedExtensions  map[string]struct{} // lowercased, no leading dot; nil = no filter
	ContextLabel       string
}

// extensionAllowed reports whether ext (already lowercased, no dot) passes
// the configured extension filter. An absent extension fails the filter
// whenever one is configured (spec.md §4.2).
func (o FilesystemOptions) extensionAllowed(ext string) bool {
	if len(o.AllowedExtensions) == 0 {
		return true
	}
	_, ok := o.AllowedExtensions[ext]
	return ok
}

func (o FilesystemOptions) globallyIgnored(base string) bool {
	if o.GlobalIgnores == nil {
		return false
	}
	_, ok := o.GlobalIgnores[base]
	return ok
}
