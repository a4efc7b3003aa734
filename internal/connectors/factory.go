package connectors

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/conciliar/internal/connectors/delimited"
	"github.com/custodia-labs/conciliar/internal/connectors/spreadsheet"
	"github.com/custodia-labs/conciliar/internal/core/domain"
	"github.com/custodia-labs/conciliar/internal/core/ports/driven"
)

// Ensure Factory implements the interface.
var _ driven.LoaderFactory = (*Factory)(nil)

// Factory selects a table loader by file extension.
type Factory struct {
	mu      sync.RWMutex
	loaders map[string]driven.TableLoader
}

// NewFactory creates an empty loader factory.
func NewFactory() *Factory {
	return &Factory{
		loaders: make(map[string]driven.TableLoader),
	}
}

// NewDefaultFactory creates a factory with the spreadsheet and delimited
// text loaders registered.
func NewDefaultFactory() *Factory {
	f := NewFactory()
	f.Register(spreadsheet.New())
	f.Register(delimited.New())
	return f
}

// Register adds a loader for each of its extensions. A later registration
// replaces an earlier one for the same extension.
func (f *Factory) Register(loader driven.TableLoader) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, ext := range loader.Extensions() {
		f.loaders[strings.ToLower(ext)] = loader
	}
}

// For returns the loader for the file's extension.
func (f *Factory) For(path string) (driven.TableLoader, error) {
	ext := strings.ToLower(filepath.Ext(path))

	f.mu.RLock()
	defer f.mu.RUnlock()
	loader, ok := f.loaders[ext]
	if !ok {
		return nil, fmt.Errorf("%w: %s (supported: %s)",
			domain.ErrUnsupportedType, filepath.Base(path), strings.Join(f.supported(), ", "))
	}
	return loader, nil
}

// SupportedExtensions returns every registered extension, sorted.
func (f *Factory) SupportedExtensions() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.supported()
}

func (f *Factory) supported() []string {
	exts := make([]string, 0, len(f.loaders))
	for ext := range f.loaders {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
