package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"runtime/pprof"
	"strings"

	"github.com/chzyer/readline"

	"github.com/taktile/takt"
	"github.com/taktile/takt/cmd"
	"github.com/taktile/takt/oto"
	"github.com/taktile/takt/seq"
	"github.com/taktile/takt/version"
)

var (
	syntherFlag  = flag.String("synth", "go", "synth implementation to use")
	settingsFlag = flag.String("settings", cmd.SettingsDir(), "directory for the persisted settings, empty to disable")
	cpuprofile   = flag.String("cpuprofile", "", "write cpu profile to `file`")
	memprofile   = flag.String("memprofile", "", "write memory profile to `file`")
	versionFlag  = flag.Bool("version", false, "print the version and exit")
)

func main() {
	flag.Usage = printUsage
	flag.Parse()
	if *versionFlag {
		fmt.Println(version.VersionOrHash)
		return
	}
	if *cpuprofile != "" {
		f, err := os.Create(*cpuprofile)
		if err != nil {
			log.Fatal("could not create CPU profile: ", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			log.Fatal("could not start CPU profile: ", err)
		}
		defer f.Close()
		defer pprof.StopCPUProfile()
	}
	synther, err := cmd.Synther(*syntherFlag)
	if err != nil {
		log.Fatal(err)
	}
	audioContext, err := oto.NewContext()
	if err != nil {
		log.Fatal(err)
	}
	broker := seq.NewBroker()
	player := seq.NewPlayer(broker, synther)
	model := seq.NewModel(broker, synther, nil, *settingsFlag)
	if flag.NArg() > 0 {
		model.OpenProject(flag.Arg(0))
	}
	playback := audioContext.Play(func(buf takt.AudioBuffer) (int, error) {
		player.Process(buf)
		return len(buf), nil
	})
	defer playback.Close()
	if err := repl(model); err != nil && err != io.EOF {
		log.Fatal(err)
	}
	model.SaveSettings()
	if *memprofile != "" {
		f, err := os.Create(*memprofile)
		if err != nil {
			log.Fatal("could not create memory profile: ", err)
		}
		defer f.Close()
		runtime.GC() // get up-to-date statistics
		if err := pprof.WriteHeapProfile(f); err != nil {
			log.Fatal("could not write memory profile: ", err)
		}
	}
}

func repl(model *seq.Model) error {
	rl, err := readline.New("takt> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for !model.Quitted() {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			model.Stop().Do()
			continue
		}
		if err == io.EOF {
			model.RequestQuit().Do()
			if !model.Quitted() {
				drainAlerts(model)
				continue
			}
			break
		}
		if err != nil {
			return err
		}
		model.ProcessMessages()
		if fields := strings.Fields(line); len(fields) > 0 {
			if err := eval(model, fields); err != nil {
				fmt.Println(err)
			}
		}
		model.ProcessMessages()
		drainAlerts(model)
		model.SaveSettings()
	}
	return nil
}

func drainAlerts(model *seq.Model) {
	for _, a := range model.Alerts().Iterate {
		if a.Priority == seq.Info {
			fmt.Println(a.Message)
		} else {
			fmt.Printf("%v: %s\n", a.Priority, a.Message)
		}
	}
	model.Alerts().Clear()
}

func printUsage() {
	fmt.Fprintf(os.Stderr, "Takt piano roll sequencer\n\nUsage: %s [flags] [project file]\n\nCommands are entered at the prompt; type help for a list.\n\nFlags:\n", os.Args[0])
	flag.PrintDefaults()
}
