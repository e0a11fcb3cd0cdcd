package relayer

import (
	"encoding/json"
	"fmt"
	"os"

	types2 "github.com/kysee/zk-lightclient/provers/types"
	"github.com/kysee/zk-lightclient/types"
)

// FileFetcher implements Fetcher by reading from a local JSON file
type FileFetcher struct {
	FilePath string
}

// NewFileFetcher creates a new FileFetcher with the given file path
func NewFileFetcher(filePath string) *FileFetcher {
	return &FileFetcher{
		FilePath: filePath,
	}
}

// ScUpdate reads and parses the light client update from the file
func (f *FileFetcher) ScUpdate(period uint64) (*types.LightClientUpdate, error) {
	// Read the file
	data, err := os.ReadFile(f.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", f.FilePath, err)
	}

	// Parse JSON
	var update types.LightClientUpdate
	if err := json.Unmarshal(data, &update); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &update, nil
}

// LatestFinalityUpdate reads the same file; a canned update doubles as its
// own finality update in tests
func (f *FileFetcher) LatestFinalityUpdate() (*types.LightClientUpdate, error) {
	return f.ScUpdate(0)
}

// Block is not available from a file source
func (f *FileFetcher) Block(slot uint64) (*types2.BlockAPIResponse, error) {
	return nil, fmt.Errorf("block fetching is not supported by the file fetcher")
}
