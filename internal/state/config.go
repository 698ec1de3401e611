package state

import (
	"path/filepath"
	"sync"

	"github.com/hashicorp/hcl"
	"github.com/juju/errors"
	"github.com/temoto/kiosk/hardware/reader"
	"github.com/temoto/kiosk/helpers"
	"github.com/temoto/kiosk/internal/bank"
	ui_config "github.com/temoto/kiosk/internal/ui/config"
	"github.com/temoto/kiosk/log2"
	tele_config "github.com/temoto/kiosk/tele/config"
)

type Config struct {
	// includeSeen contains absolute paths to prevent include loops
	includeSeen map[string]struct{}
	// only used for Unmarshal, do not access
	XXX_Include []ConfigSource `hcl:"include"`

	Hardware struct {
		Display struct {
			Framebuffer string `hcl:"framebuffer"`
			Width       int    `hcl:"width"`
			Height      int    `hcl:"height"`
		}
		Input struct {
			DevInputEvent struct {
				Enable    bool   `hcl:"enable"`
				Device    string `hcl:"device"`
				TouchMaxX int    `hcl:"touch_max_x"`
				TouchMaxY int    `hcl:"touch_max_y"`
			} `hcl:"dev_input_event"`
			Terminal struct {
				Enable bool `hcl:"enable"`
			} `hcl:"terminal"`
		}
		CardReader      reader.Config `hcl:"card_reader"`
		BiometricReader reader.Config `hcl:"biometric_reader"`
	}

	Persist struct {
		Root string `hcl:"root"`
	}
	Tele   tele_config.Config `hcl:"tele"`
	UI     ui_config.Config `hcl:"ui"`
	Verify bank.Config      `hcl:"verify"`
	Window ui_config.Window `hcl:"window"`

	_copy_guard sync.Mutex //nolint:unused
}

type ConfigSource struct {
	Name     string `hcl:"name,key"`
	Optional bool   `hcl:"optional"`
}

func (c *Config) read(log *log2.Log, fs FullReader, source ConfigSource, errs *[]error) {
	norm := fs.Normalize(source.Name)
	if _, ok := c.includeSeen[norm]; ok {
		log.Fatalf("config duplicate source=%s", source.Name)
	} else {
		log.Debugf("config reading source='%s' path=%s", source.Name, norm)
	}
	c.includeSeen[source.Name] = struct{}{}
	c.includeSeen[norm] = struct{}{}

	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		if !source.Optional {
			err = errors.NotFoundf("config required name=%s path=%s", source.Name, norm)
			*errs = append(*errs, err)
		}
		return
	}
	if err != nil {
		*errs = append(*errs, errors.Annotatef(err, "config source=%s", source.Name))
		return
	}

	err = hcl.Unmarshal(bs, c)
	if err != nil {
		err = errors.Annotatef(err, "config unmarshal source=%s content='%s'", source.Name, string(bs))
		*errs = append(*errs, err)
		return
	}

	if c.Window.Source != "" {
		var windowSource string
		windowSource, c.Window.Source = c.Window.Source, ""
		c.readWindow(fs, source.Name, windowSource, errs)
	}

	var includes []ConfigSource
	includes, c.XXX_Include = c.XXX_Include, nil
	for _, include := range includes {
		includeNorm := fs.Normalize(include.Name)
		if _, ok := c.includeSeen[includeNorm]; ok {
			err = errors.Errorf("config include loop: from=%s include=%s", source.Name, include.Name)
			*errs = append(*errs, err)
			continue
		}
		c.read(log, fs, include, errs)
	}
}

func (c *Config) readWindow(fs FullReader, from, name string, errs *[]error) {
	norm := fs.Normalize(name)
	bs, err := fs.ReadAll(norm)
	if bs == nil && err == nil {
		err = errors.NotFoundf("config window source=%s from=%s path=%s", name, from, norm)
	}
	if err == nil {
		err = c.Window.MergeJSON(bs)
		err = errors.Annotatef(err, "config window source=%s", name)
	}
	if err != nil {
		*errs = append(*errs, err)
	}
}

func ReadConfig(log *log2.Log, fs FullReader, names ...string) (*Config, error) {
	if len(names) == 0 {
		log.Fatal("code error [Must]ReadConfig() without names")
	}

	if osfs, ok := fs.(*OsFullReader); ok {
		dir, name := filepath.Split(names[0])
		osfs.SetBase(dir)
		names[0] = name
	}
	c := &Config{
		includeSeen: make(map[string]struct{}),
	}
	errs := make([]error, 0, 8)
	for _, name := range names {
		c.read(log, fs, ConfigSource{Name: name}, &errs)
	}
	return c, helpers.FoldErrors(errs)
}

func MustReadConfig(log *log2.Log, fs FullReader, names ...string) *Config {
	c, err := ReadConfig(log, fs, names...)
	if err != nil {
		log.Fatal(errors.ErrorStack(err))
	}
	return c
}
