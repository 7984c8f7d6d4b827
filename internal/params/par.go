package params

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-ini/ini"

	"github.com/snek5000/snekctl/internal/cmn/fileutil"
	"github.com/snek5000/snekctl/internal/session"
)

const (
	sectionGeneral  = "GENERAL"
	sectionChkpoint = "_CHKPOINT"

	keyStartFrom   = "startFrom"
	keyEndTime     = "endTime"
	keyNumSteps    = "numSteps"
	keyDt          = "dt"
	keyChkpFnumber = "chkp_fnumber"
	keyReadChkpt   = "read_chkpt"
)

// findParFile returns the name of the .par file in dir. preferred is tried
// first; otherwise exactly one .par file must exist.
func findParFile(dir, preferred string) (string, error) {
	if preferred != "" && fileutil.FileExists(filepath.Join(dir, preferred+".par")) {
		return preferred + ".par", nil
	}

	matches, err := doublestar.Glob(os.DirFS(dir), "*.par")
	if err != nil {
		return "", fmt.Errorf("failed to list .par files in %s: %w", dir, err)
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("%w: no %s or .par file in %s", ErrNotFound, FileName, dir)
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("%w in %s: %s", ErrAmbiguous, dir, strings.Join(matches, ", "))
	}
}

func parStem(name string) string {
	return strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))
}

// loadPar builds parameters from a bare Nek5000 .par file.
func loadPar(dir, name string) (*Parameters, error) {
	cfg, err := ini.LoadSources(ini.LoadOptions{Insensitive: true}, filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}

	p := &Parameters{
		Solver:  parStem(name),
		parFile: name,
	}
	p.SetSession(0, session.Name(0))

	general := cfg.Section(strings.ToLower(sectionGeneral))
	p.Nek.General.StartFrom = general.Key(strings.ToLower(keyStartFrom)).String()
	p.Nek.General.EndTime = general.Key(strings.ToLower(keyEndTime)).MustFloat64(0)
	p.Nek.General.NumSteps = general.Key(strings.ToLower(keyNumSteps)).MustInt(0)
	p.Nek.General.Dt = general.Key(strings.ToLower(keyDt)).MustFloat64(0)

	chk := cfg.Section(strings.ToLower(sectionChkpoint))
	p.Nek.Chkpoint.ChkpFnumber = chk.Key(keyChkpFnumber).MustInt(1)
	p.Nek.Chkpoint.ReadChkpt = chk.Key(keyReadChkpt).MustBool(false)

	return p, nil
}

// savePar rewrites the restart related keys of an existing .par file. Key and
// section spelling already present in the file is preserved.
func (p *Parameters) savePar(path string) error {
	cfg, err := ini.Load(path)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	general, err := findSection(cfg, sectionGeneral)
	if err != nil {
		return err
	}
	if p.Nek.General.StartFrom != "" {
		setKey(general, keyStartFrom, p.Nek.General.StartFrom)
	} else {
		deleteKey(general, keyStartFrom)
	}
	if p.Nek.General.EndTime > 0 {
		setKey(general, keyEndTime, strconv.FormatFloat(p.Nek.General.EndTime, 'g', -1, 64))
	}
	if p.Nek.General.NumSteps > 0 {
		setKey(general, keyNumSteps, strconv.Itoa(p.Nek.General.NumSteps))
	}

	chk, err := findSection(cfg, sectionChkpoint)
	if err != nil {
		return err
	}
	setKey(chk, keyReadChkpt, yesNo(p.Nek.Chkpoint.ReadChkpt))
	setKey(chk, keyChkpFnumber, strconv.Itoa(p.Nek.Chkpoint.ChkpFnumber))

	if err := cfg.SaveTo(path); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func findSection(cfg *ini.File, name string) (*ini.Section, error) {
	for _, s := range cfg.Sections() {
		if strings.EqualFold(s.Name(), name) {
			return s, nil
		}
	}
	s, err := cfg.NewSection(name)
	if err != nil {
		return nil, fmt.Errorf("failed to add section %s: %w", name, err)
	}
	return s, nil
}

func setKey(s *ini.Section, name, value string) {
	for _, k := range s.Keys() {
		if strings.EqualFold(k.Name(), name) {
			k.SetValue(value)
			return
		}
	}
	_, _ = s.NewKey(name, value)
}

func deleteKey(s *ini.Section, name string) {
	for _, k := range s.Keys() {
		if strings.EqualFold(k.Name(), name) {
			s.DeleteKey(k.Name())
		}
	}
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
