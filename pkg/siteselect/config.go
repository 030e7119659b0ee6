package siteselect

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// Config is what can be kept in a TOML file, so the same selection can
// be used on many runs. Anything given on the command line wins.
//
//	include = ["label_comp_id=MET,GLY"]
//	exclude = ["type_symbol=H"]
//	tags    = ["id", "type_symbol", "rotag_selection_state"]
//	format  = "tsv"
type Config struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
	Select  []string `toml:"select"`
	Tags    []string `toml:"tags"`
	Group   string   `toml:"group"`
	Format  string   `toml:"format"`
}

// loadConfig reads a TOML file. Keys we do not know are an error, since
// they are probably spelling mistakes.
func loadConfig(path string) (Config, toml.MetaData, error) {
	var cfg Config
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, meta, fmt.Errorf("reading config %s: %w", path, err)
	}
	if und := meta.Undecoded(); len(und) > 0 {
		return cfg, meta, fmt.Errorf("config %s: unknown key %q", path, und[0].String())
	}
	return cfg, meta, nil
}

// applyConfig copies values from the config file into args, unless the
// flag was set. changed says if a flag was given on the command line.
func applyConfig(args *CmdArgs, changed func(string) bool) error {
	if args.Config == "" {
		return nil
	}
	cfg, meta, err := loadConfig(args.Config)
	if err != nil {
		return err
	}
	use := func(key string) bool { return meta.IsDefined(key) && !changed(key) }
	if use("include") {
		args.Include = cfg.Include
	}
	if use("exclude") {
		args.Exclude = cfg.Exclude
	}
	if use("select") {
		args.Select = cfg.Select
	}
	if use("tags") {
		args.Tags = cfg.Tags
	}
	if use("group") {
		args.Group = cfg.Group
	}
	if use("format") {
		args.Format = cfg.Format
	}
	return nil
}
