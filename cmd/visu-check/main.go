package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"visu"
	"visu/script"
	"visu/version"
)

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	jsonOut := flag.Bool("j", false, "Rewrite the project as a .json file after checking.")
	yamlOut := flag.Bool("y", false, "Rewrite the project as a .yml file after checking.")
	outPath := flag.String("o", "", "Directory where to write converted projects. The directory and its parents are created if needed. By default, everything is placed in the same directory where the original project file is.")
	versionFlag := flag.Bool("v", false, "Print version.")
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		os.Exit(0)
	}
	if flag.NArg() == 0 || *help {
		flag.Usage()
		os.Exit(0)
	}
	output := func(filename string, extension string, contents []byte) error {
		if *stdout {
			fmt.Print(string(contents))
			return nil
		}
		dir, name := filepath.Split(filename)
		if *outPath != "" {
			dir = *outPath
		}
		if dir == "" {
			var err error
			dir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("could not get working directory, specify the output directory explicitly: %v", err)
			}
		}
		name = strings.TrimSuffix(name, filepath.Ext(name)) + extension
		f := filepath.Join(dir, name)
		if err := os.MkdirAll(dir, os.ModePerm); err != nil {
			return fmt.Errorf("could not create output directory %v: %v", dir, err)
		}
		if err := os.WriteFile(f, contents, 0644); err != nil {
			return fmt.Errorf("could not write file %v: %v", f, err)
		}
		return nil
	}
	process := func(filename string) error {
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		var project visu.Project
		if errJSON := json.Unmarshal(inputBytes, &project); errJSON != nil {
			if errYaml := yaml.Unmarshal(inputBytes, &project); errYaml != nil {
				return fmt.Errorf("the project could not be parsed as .json (%v) or .yml (%v)", errJSON, errYaml)
			}
		}
		problems := checkProject(project)
		for _, p := range problems {
			fmt.Fprintf(os.Stderr, "%v: %s\n", filename, p)
		}
		if *jsonOut {
			jsonProject, err := json.MarshalIndent(project, "", "  ")
			if err != nil {
				return fmt.Errorf("could not marshal the project as json: %v", err)
			}
			if err := output(filename, ".json", jsonProject); err != nil {
				return fmt.Errorf("error outputting json file: %v", err)
			}
		}
		if *yamlOut {
			yamlProject, err := yaml.Marshal(project)
			if err != nil {
				return fmt.Errorf("could not marshal the project as yaml: %v", err)
			}
			if err := output(filename, ".yml", yamlProject); err != nil {
				return fmt.Errorf("error outputting yaml file: %v", err)
			}
		}
		if len(problems) > 0 {
			return fmt.Errorf("%d problem(s) found", len(problems))
		}
		return nil
	}
	retval := 0
	for _, param := range flag.Args() {
		if info, err := os.Stat(param); err == nil && info.IsDir() {
			jsonfiles, err := filepath.Glob(filepath.Join(param, "*.json"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for json files: %v\n", param, err)
				retval = 1
				continue
			}
			ymlfiles, err := filepath.Glob(filepath.Join(param, "*.yml"))
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not glob the path %v for yml files: %v\n", param, err)
				retval = 1
				continue
			}
			files := append(ymlfiles, jsonfiles...)
			for _, file := range files {
				err := process(file)
				if err != nil {
					fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", file, err)
					retval = 1
				}
			}
		} else {
			err := process(param)
			if err != nil {
				fmt.Fprintf(os.Stderr, "could not process file %v: %v\n", param, err)
				retval = 1
			}
		}
	}
	os.Exit(retval)
}

// checkProject validates the segment list and parses every segment's code,
// returning one message per problem found.
func checkProject(project visu.Project) []string {
	var problems []string
	if project.Version != visu.ProjectVersion {
		problems = append(problems, fmt.Sprintf("project version %q does not match current version %q", project.Version, visu.ProjectVersion))
	}
	for i, seg := range project.Segments {
		if err := seg.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("segment %d: %v", i, err))
		}
		if _, err := script.Parse(seg.Code); err != nil {
			problems = append(problems, fmt.Sprintf("segment %d [%.1fs - %.1fs]: %v", i, seg.StartTime, seg.EndTime, err))
		}
	}
	for i := 1; i < len(project.Segments); i++ {
		if project.Segments[i].StartTime < project.Segments[i-1].StartTime {
			problems = append(problems, fmt.Sprintf("segment %d starts before segment %d; the list is not sorted", i, i-1))
			break
		}
	}
	return problems
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Checks visu .yml/.json project files: validates the segment list and parses every segment's code. Use -j/-y to convert between formats.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
