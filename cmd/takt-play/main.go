package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/taktile/takt"
	"github.com/taktile/takt/cmd"
	"github.com/taktile/takt/oto"
	"github.com/taktile/takt/seq"
	"github.com/taktile/takt/version"
)

func main() {
	stdout := flag.Bool("s", false, "Do not write files; write to standard output instead.")
	help := flag.Bool("h", false, "Show help.")
	directory := flag.String("o", "", "Directory where to output all files. The directory and its parents are created if needed. By default, everything is placed in the same directory as the project file.")
	play := flag.Bool("p", false, "Play the input projects (default behaviour when no other output is defined).")
	rawOut := flag.Bool("r", false, "Output the rendered project as a .raw file with a stereo float32 buffer.")
	wavOut := flag.Bool("w", false, "Output the rendered project as a .wav file.")
	midiOut := flag.Bool("m", false, "Output the project as a standard MIDI file.")
	headerOut := flag.Bool("d", false, "Output the rendered project as a C header with the sample data.")
	pcm := flag.Bool("c", false, "Convert audio to 16-bit signed PCM when outputting.")
	syntherFlag := flag.String("synth", "go", "Synth implementation used for rendering.")
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
	if !*rawOut && !*wavOut && !*midiOut && !*headerOut {
		*play = true // with nothing to output, the default behaviour is just to play the file
	}
	synther, err := cmd.Synther(*syntherFlag)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	var audioContext *oto.Context
	var playWaiter takt.CloserWaiter
	if *play {
		var err error
		audioContext, err = oto.NewContext()
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not acquire oto AudioContext: %v\n", err)
			os.Exit(1)
		}
	}
	process := func(filename string) error {
		output := func(extension string, contents []byte) error {
			if *stdout {
				os.Stdout.Write(contents)
				return nil
			}
			_, name := filepath.Split(filename)
			dir := *directory
			if dir == "" {
				dir = filepath.Dir(filename)
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
		inputBytes, err := os.ReadFile(filename)
		if err != nil {
			return fmt.Errorf("could not read file %v: %v", filename, err)
		}
		project, err := seq.ParseProject(inputBytes)
		if err != nil {
			return err
		}
		if *midiOut {
			midi, err := project.MIDI()
			if err != nil {
				return fmt.Errorf("could not generate MIDI: %v", err)
			}
			if err := output(".mid", midi); err != nil {
				return fmt.Errorf("error outputting .mid file: %v", err)
			}
		}
		if !*play && !*rawOut && !*wavOut && !*headerOut {
			return nil
		}
		buffer, err := takt.Play(synther, project, nil)
		if err != nil {
			return fmt.Errorf("takt.Play failed: %v", err)
		}
		if *play {
			playWaiter = audioContext.Play(buffer.Source())
		}
		if *rawOut {
			raw, err := buffer.Raw(*pcm)
			if err != nil {
				return fmt.Errorf("could not generate .raw file: %v", err)
			}
			if err := output(".raw", raw); err != nil {
				return fmt.Errorf("error outputting .raw file: %v", err)
			}
		}
		if *wavOut {
			wav, err := buffer.Wav(*pcm)
			if err != nil {
				return fmt.Errorf("could not generate .wav file: %v", err)
			}
			if err := output(".wav", wav); err != nil {
				return fmt.Errorf("error outputting .wav file: %v", err)
			}
		}
		if *headerOut {
			name := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
			header, err := buffer.CHeader(name)
			if err != nil {
				return fmt.Errorf("could not generate C header: %v", err)
			}
			if err := output(".h", header); err != nil {
				return fmt.Errorf("error outputting .h file: %v", err)
			}
		}
		if *play {
			playWaiter.Wait()
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

func printUsage() {
	fmt.Fprintf(os.Stderr, "Takt command line utility for playing and rendering .json/.yml project files.\nUsage: %s [flags] [path ...]\n", os.Args[0])
	flag.PrintDefaults()
}
