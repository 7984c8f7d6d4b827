// Package params loads and saves the parameters of a simulation directory.
//
// The primary record is params_simul.xml. Directories that only carry a Nek5000
// .par file are read through the par fallback, with the session defaulting to
// session_00.
package params

import (
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/snek5000/snekctl/internal/cmn/fileutil"
	"github.com/snek5000/snekctl/internal/session"
)

// FileName is the parameters record persisted in each run directory.
const FileName = "params_simul.xml"

var (
	// ErrNotFound is returned when a directory holds neither params_simul.xml
	// nor a single .par file.
	ErrNotFound = errors.New("parameters not found")
	// ErrAmbiguous is returned when several .par files could describe the case.
	ErrAmbiguous = errors.New("several .par files found")
)

// Parameters is the hierarchical parameter record of a simulation.
type Parameters struct {
	XMLName       xml.Name   `xml:"params"`
	Solver        string     `xml:"solver,attr,omitempty"`
	NewDirResults bool       `xml:"NEW_DIR_RESULTS,attr"`
	Output        Output     `xml:"output"`
	Nek           Nek        `xml:"nek"`
	Attrs         []xml.Attr `xml:",any,attr"`
	Extra         []RawNode  `xml:",any"`

	// parFile is the .par file the record came from or should be mirrored to.
	parFile string
}

// Output holds the session bookkeeping.
type Output struct {
	SessionID   int        `xml:"session_id,attr"`
	PathSession string     `xml:"path_session,attr"`
	HasToSave   *bool      `xml:"HAS_TO_SAVE,attr,omitempty"`
	Attrs       []xml.Attr `xml:",any,attr"`
	Extra       []RawNode  `xml:",any"`
}

// Nek mirrors the sections of the Nek5000 .par file.
type Nek struct {
	General  General    `xml:"general"`
	Chkpoint Chkpoint   `xml:"chkpoint"`
	Attrs    []xml.Attr `xml:",any,attr"`
	Extra    []RawNode  `xml:",any"`
}

// General is the [GENERAL] section.
type General struct {
	StartFrom string     `xml:"start_from,attr"`
	EndTime   float64    `xml:"end_time,attr"`
	NumSteps  int        `xml:"num_steps,attr"`
	Dt        float64    `xml:"dt,attr"`
	Attrs     []xml.Attr `xml:",any,attr"`
	Extra     []RawNode  `xml:",any"`
}

// Chkpoint is the [_CHKPOINT] section of the KTH checkpointing toolbox.
type Chkpoint struct {
	ChkpFnumber int        `xml:"chkp_fnumber,attr"`
	ReadChkpt   bool       `xml:"read_chkpt,attr"`
	Attrs       []xml.Attr `xml:",any,attr"`
	Extra       []RawNode  `xml:",any"`
}

// RawNode keeps elements snekctl does not interpret so that they survive a
// load/save round trip.
type RawNode struct {
	XMLName xml.Name
	Attrs   []xml.Attr `xml:",any,attr"`
	Inner   []byte     `xml:",innerxml"`
}

// SessionPath returns the absolute session directory recorded in the
// parameters. Relative paths are resolved against runDir.
func (p *Parameters) SessionPath(runDir string) string {
	if p.Output.PathSession == "" {
		return session.Path(runDir, p.Output.SessionID)
	}
	if filepath.IsAbs(p.Output.PathSession) {
		return filepath.Clean(p.Output.PathSession)
	}
	return filepath.Join(runDir, p.Output.PathSession)
}

// SetSession records a new session.
func (p *Parameters) SetSession(id int, path string) {
	p.Output.SessionID = id
	p.Output.PathSession = path
}

// ExposesHasToSave reports whether the record carries output.HAS_TO_SAVE.
func (p *Parameters) ExposesHasToSave() bool {
	return p.Output.HasToSave != nil
}

// ParFile returns the name of the .par file associated with the record.
func (p *Parameters) ParFile() string {
	return p.parFile
}

// Clone returns a deep copy.
func (p *Parameters) Clone() *Parameters {
	c := *p
	if p.Output.HasToSave != nil {
		v := *p.Output.HasToSave
		c.Output.HasToSave = &v
	}
	c.Attrs = cloneAttrs(p.Attrs)
	c.Extra = cloneNodes(p.Extra)
	c.Output.Attrs = cloneAttrs(p.Output.Attrs)
	c.Output.Extra = cloneNodes(p.Output.Extra)
	c.Nek.Attrs = cloneAttrs(p.Nek.Attrs)
	c.Nek.Extra = cloneNodes(p.Nek.Extra)
	c.Nek.General.Attrs = cloneAttrs(p.Nek.General.Attrs)
	c.Nek.General.Extra = cloneNodes(p.Nek.General.Extra)
	c.Nek.Chkpoint.Attrs = cloneAttrs(p.Nek.Chkpoint.Attrs)
	c.Nek.Chkpoint.Extra = cloneNodes(p.Nek.Chkpoint.Extra)
	return &c
}

func cloneAttrs(attrs []xml.Attr) []xml.Attr {
	if attrs == nil {
		return nil
	}
	return append([]xml.Attr(nil), attrs...)
}

func cloneNodes(nodes []RawNode) []RawNode {
	if nodes == nil {
		return nil
	}
	out := make([]RawNode, len(nodes))
	for i, n := range nodes {
		out[i] = RawNode{
			XMLName: n.XMLName,
			Attrs:   cloneAttrs(n.Attrs),
			Inner:   append([]byte(nil), n.Inner...),
		}
	}
	return out
}

// Load reads the parameters of the run directory dir.
func Load(dir string) (*Parameters, error) {
	if !fileutil.IsDir(dir) {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrNotFound, dir)
	}

	xmlPath := filepath.Join(dir, FileName)
	if fileutil.FileExists(xmlPath) {
		p, err := loadXML(xmlPath)
		if err != nil {
			return nil, err
		}
		if par, err := findParFile(dir, p.Solver); err == nil {
			p.parFile = par
		}
		return p, nil
	}

	par, err := findParFile(dir, "")
	if err != nil {
		return nil, err
	}
	return loadPar(dir, par)
}

func loadXML(path string) (*Parameters, error) {
	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var p Parameters
	if err := xml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return &p, nil
}

// Save writes params_simul.xml into dir and mirrors the restart related keys
// into the associated .par file when one exists.
func (p *Parameters) Save(dir string) error {
	data, err := xml.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode parameters: %w", err)
	}
	data = append([]byte(xml.Header), data...)
	data = append(data, '\n')

	if err := writeFileAtomic(filepath.Join(dir, FileName), data); err != nil {
		return err
	}

	if p.parFile != "" && fileutil.FileExists(filepath.Join(dir, p.parFile)) {
		return p.savePar(filepath.Join(dir, p.parFile))
	}
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}

// SolverShortName returns the short name of the solver that produced dir:
// the solver attribute of params_simul.xml, else the stem of the single .par
// file.
func SolverShortName(dir string) (string, error) {
	xmlPath := filepath.Join(dir, FileName)
	if fileutil.FileExists(xmlPath) {
		p, err := loadXML(xmlPath)
		if err != nil {
			return "", err
		}
		if p.Solver != "" {
			return p.Solver, nil
		}
	}

	par, err := findParFile(dir, "")
	if err != nil {
		return "", err
	}
	return parStem(par), nil
}
