package boundspec

import (
	_ "embed"
	"strconv"
	"time"

	"github.com/protocolbuffers/txtpbfmt/ast"
	"github.com/protocolbuffers/txtpbfmt/parser"
	"golang.org/x/xerrors"
)

//go:embed releases.textproto
var releasesTextproto []byte

// Table is the parsed releases.textproto: release tag -> branch-point
// nightly date. Grounded on the teacher's cmd/distri-checkupstream, which
// reads a build.textproto the same way (parser.Parse, then ast.GetFromPath
// to pull scalar fields out by name) rather than generating a proto
// message type for a file this small and this rarely written.
type Table struct {
	byTag map[string]time.Time
}

// LoadDefault parses the embedded release table.
func LoadDefault() (*Table, error) {
	return Load(releasesTextproto)
}

// Load parses b as a releases.textproto document.
func Load(b []byte) (*Table, error) {
	nodes, err := parser.Parse(b)
	if err != nil {
		return nil, xerrors.Errorf("boundspec: parsing release table: %w", err)
	}
	t := &Table{byTag: make(map[string]time.Time)}
	for _, release := range ast.GetFromPath(nodes, []string{"release"}) {
		version, err := scalar(release.Children, "version")
		if err != nil {
			return nil, xerrors.Errorf("boundspec: release entry: %w", err)
		}
		branchDate, err := scalar(release.Children, "branch_date")
		if err != nil {
			return nil, xerrors.Errorf("boundspec: release %s: %w", version, err)
		}
		d, err := time.ParseInLocation("2006-01-02", branchDate, time.UTC)
		if err != nil {
			return nil, xerrors.Errorf("boundspec: release %s: branch_date: %w", version, err)
		}
		t.byTag[maybeV(version)] = d
	}
	return t, nil
}

func scalar(nodes []*ast.Node, name string) (string, error) {
	matches := ast.GetFromPath(nodes, []string{name})
	if len(matches) != 1 {
		return "", xerrors.Errorf("expected exactly one %q field, got %d", name, len(matches))
	}
	values := matches[0].Values
	if len(values) != 1 {
		return "", xerrors.Errorf("field %q has %d values, want 1", name, len(values))
	}
	return strconv.Unquote(values[0].Value)
}

// BranchDate returns the nightly date release tag was branched at. tag
// may be given with or without a leading "v".
func (t *Table) BranchDate(tag string) (time.Time, error) {
	d, ok := t.byTag[maybeV(tag)]
	if !ok {
		return time.Time{}, &errNotInTable{tag: tag}
	}
	return d, nil
}
