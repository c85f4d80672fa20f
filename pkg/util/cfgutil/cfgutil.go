// Copyright (C) 2017 ScyllaDB

package cfgutil

import (
	"os"

	"github.com/pkg/errors"
	"go.uber.org/config"
)

// ParseYAML populates target with merged content of the existing files,
// keys in later files take precedence. Missing files are skipped.
// References to environment variables in form of ${NAME} or ${NAME:default}
// are expanded, so that secrets such as CQL password can be kept out of
// the files.
func ParseYAML(target interface{}, files ...string) error {
	var opts []config.YAMLOption
	for _, f := range files {
		info, err := os.Stat(f)
		if os.IsNotExist(err) {
			continue
		}
		if err != nil {
			return errors.Wrapf(err, "stat %s", f)
		}
		if info.IsDir() {
			return errors.Errorf("%s is a directory", f)
		}
		opts = append(opts, config.File(f))
	}
	if len(opts) == 0 {
		return nil
	}
	opts = append(opts, config.Expand(os.LookupEnv))

	cfg, err := config.NewYAML(opts...)
	if err != nil {
		return err
	}
	return cfg.Get(config.Root).Populate(target)
}
