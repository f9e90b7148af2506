package builder

import "oraclerepair/internal/host"

// DefaultRegistry returns a registry with this package's built-in
// builders registered in a fixed order, which is also their
// deterministic tie-break order. pkgIndex seeds
// MissingImportBuilder; pass nil for an empty index (no import fixes
// will match).
func DefaultRegistry(pkgIndex PackageIndex, onError func(string, host.Diagnostic, error)) *Registry {
	r := NewRegistry(onError)
	r.Register(&MissingImportBuilder{Index: pkgIndex})
	r.Register(&UndeclaredNameBuilder{})
	r.Register(&CatchAllAdapterBuilder{})
	return r
}
