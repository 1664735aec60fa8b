package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	vmaxtui "github.com/voxelforge/vmaxtui"
)

const version = "1.0"

const licenseInfo = `vmaxtui ` + version + `
Distributed under the MIT License.`

const thirdPartyNotices = `Third-party components:
  fsnotify            BSD-3-Clause
  go-gl/mathgl        BSD-3-Clause
  google/uuid         BSD-3-Clause
  klauspost/compress  Apache-2.0 / BSD-3-Clause
  lzfse-cgo           BSD-3-Clause (bindings), LZFSE reference: BSD-3-Clause
  howett.net/plist    BSD-2-Clause
  santhosh-tekuri/jsonschema  Apache-2.0
  yaml.v3             Apache-2.0 / MIT`

func main() {
	var (
		input      string
		output     string
		watchDir   string
		configPath string
		thirdparty bool
		license    bool
		debug      bool
	)
	flag.StringVar(&input, "input", "", "vmax directory to convert once")
	flag.StringVar(&input, "i", "", "shorthand for -input")
	flag.StringVar(&output, "output", "", "output scene file name")
	flag.StringVar(&output, "o", "", "shorthand for -output")
	flag.StringVar(&watchDir, "watchdir", "", "watch a directory and serve renders")
	flag.StringVar(&watchDir, "w", "", "shorthand for -watchdir")
	flag.StringVar(&configPath, "config", "", "service config file (YAML)")
	flag.BoolVar(&thirdparty, "thirdparty", false, "print third-party notices")
	flag.BoolVar(&license, "licenseinfo", false, "print license info")
	flag.BoolVar(&debug, "debug", false, "enable debug logging")
	flag.Parse()

	if license {
		fmt.Println(licenseInfo)
		return
	}
	if thirdparty {
		fmt.Println(thirdPartyNotices)
		return
	}

	cfg := vmaxtui.DefaultConfig()
	if configPath != "" {
		var err error
		if cfg, err = vmaxtui.LoadConfig(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "config: %v\n", err)
			os.Exit(1)
		}
	}
	if debug {
		cfg.Debug = true
	}
	log := vmaxtui.NewDefaultLogger("vmaxtui", cfg.Debug)

	if input != "" {
		if _, err := os.Stat(input); err != nil {
			fmt.Fprintf(os.Stderr, "cannot find %s\n", input)
			os.Exit(1)
		}
		converter := vmaxtui.NewConverter(log)
		if err := converter.ConvertFile(input, output); err != nil {
			log.Errorf("convert %s: %v", input, err)
			os.Exit(1)
		}
	}

	if watchDir != "" {
		service, err := vmaxtui.NewService(cfg, nil, log)
		if err != nil {
			log.Errorf("service: %v", err)
			os.Exit(1)
		}
		log.Infof("vmaxtui server started")
		if err := service.Run(context.Background(), watchDir); err != nil {
			log.Errorf("watch %s: %v", watchDir, err)
			os.Exit(1)
		}
	}

	if input == "" && watchDir == "" {
		flag.Usage()
	}
}
