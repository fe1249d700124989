package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/utsav7416/smart-home-controls/db"
	"github.com/utsav7416/smart-home-controls/internal/devicestore"
	"github.com/utsav7416/smart-home-controls/internal/energy"
	"github.com/utsav7416/smart-home-controls/internal/heatmap"
	"github.com/utsav7416/smart-home-controls/internal/keyval"
	"github.com/utsav7416/smart-home-controls/internal/model"
	"github.com/utsav7416/smart-home-controls/internal/usage"
)

func main() {
	DebugCLI()
}

func DebugCLI() {
	var dbPath, command, room, device string
	flag.StringVar(&dbPath, "db", "data/smarthome.db", "Path to the SQLite database file")
	flag.StringVar(&command, "cmd", "", "Command to run: dump, seed-usage, heatmap, energy")
	flag.StringVar(&room, "room", "Kitchen", "Room name for usage commands")
	flag.StringVar(&device, "device", "Fan", "Device name for usage commands")
	help := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *help || command == "" {
		fmt.Println("\nUsage of smarthome-debug:")
		fmt.Println("  -db string\tPath to the SQLite database file (default 'data/smarthome.db')")
		fmt.Println("  -cmd string\tCommand to run: dump, seed-usage, heatmap, energy")
		fmt.Println("  -room string\tRoom name for usage commands")
		fmt.Println("  -device string\tDevice name for usage commands")
		fmt.Println("  -help\tShow this help message")
		os.Exit(0)
	}

	var err error
	switch command {
	case "dump":
		err = db.Dump(dbPath)
	case "seed-usage":
		err = seedUsage(dbPath, room, device)
	case "heatmap":
		err = printHeatmap(dbPath, room, device)
	case "energy":
		err = printEnergy()
	default:
		fmt.Println("Invalid command")
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Command %s failed: %v\n", command, err)
		os.Exit(1)
	}
	fmt.Printf("Command %s completed successfully\n", command)
}

// seedUsage writes one toggle per day over the trailing 9 days, with a double
// toggle mid-window, so the heatmap strip has something to show.
func seedUsage(dbPath, room, device string) error {
	store, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	broker := keyval.NewBroker(store)
	recorder := usage.NewRecorder(broker, 90)

	now := time.Now()
	on := 1
	for i := heatmap.Days - 1; i >= 0; i-- {
		day := now.AddDate(0, 0, -i)
		recorder.Record(room, device, model.ActionToggle, &on, day)
		if i == 4 {
			recorder.Record(room, device, model.ActionToggle, &on, day)
		}
	}
	return nil
}

func printHeatmap(dbPath, room, device string) error {
	store, err := db.Open(dbPath)
	if err != nil {
		return err
	}
	defer store.Close()

	broker := keyval.NewBroker(store)
	recorder := usage.NewRecorder(broker, 90)

	for _, cell := range heatmap.Build(recorder.DayCounts(room, device), time.Now()) {
		fmt.Printf("%s count=%d intensity=%d\n", cell.Day, cell.Count, cell.Intensity)
	}
	return nil
}

func printEnergy() error {
	broker := keyval.NewBroker(keyval.NewMemory())
	recorder := usage.NewRecorder(broker, 90)
	devices := devicestore.New(broker, recorder)

	snap := energy.Estimate(devices.Snapshot())
	fmt.Printf("total_kwh=%.2f active_devices=%d\n", snap.TotalKWh, snap.ActiveDevices)
	return nil
}
