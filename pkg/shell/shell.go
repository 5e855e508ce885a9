// Package shell implements the interactive command processor over a
// transportation planner: it reads commands from a source, writes results
// and errors to separate sinks and persists computed paths through a sink
// factory.
package shell

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"

	"github.com/paulmach/osm"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"trip_planner/pkg/dsv"
	"trip_planner/pkg/geo"
	"trip_planner/pkg/planner"
	"trip_planner/pkg/streetmap"
	"trip_planner/pkg/strutil"
)

// TripPlanner is the planner surface the shell drives.
type TripPlanner interface {
	NodeCount() int
	SortedNodeByIndex(i int) *osm.Node
	FindShortestPath(src, dst osm.NodeID) (float64, []osm.NodeID)
	FindFastestPath(src, dst osm.NodeID) (float64, []planner.TripStep)
	GetPathDescription(steps []planner.TripStep) ([]string, error)
}

// SinkFactory creates named output sinks for saved paths.
type SinkFactory interface {
	Create(name string) (io.WriteCloser, error)
}

const helpText = `------------------------------------------------------------------------
help     Display this help menu
exit     Exit the program
count    Output the number of nodes in the map
node     Syntax "node [0, count)"
         Will output node ID and Lat/Lon for node
fastest  Syntax "fastest start end"
         Calculates the time for fastest path from start to end
shortest Syntax "shortest start end"
         Calculates the distance for the shortest path from start to end
save     Saves the last calculated path to file
print    Prints the steps for the last calculated path
`

// Shell dispatches planner commands read line by line. It remembers the
// last computed path for save and print.
type Shell struct {
	planner TripPlanner
	in      io.Reader
	out     io.Writer
	errOut  io.Writer
	sinks   SinkFactory
	log     *zap.Logger

	lastValid    bool
	lastShortest bool
	lastCost     float64
	lastSrc      osm.NodeID
	lastDst      osm.NodeID
	lastPath     []osm.NodeID
	lastSteps    []planner.TripStep
}

// New returns a shell reading commands from in and reporting on out and
// errOut.
func New(p TripPlanner, in io.Reader, out, errOut io.Writer, sinks SinkFactory, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	return &Shell{planner: p, in: in, out: out, errOut: errOut, sinks: sinks, log: log}
}

// Run processes commands until exit or end of input. It returns nil on a
// graceful exit and the underlying error when the command source fails.
func (s *Shell) Run() error {
	scanner := bufio.NewScanner(s.in)
	for scanner.Scan() {
		fmt.Fprint(s.out, "> ")

		fields := strutil.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch fields[0] {
		case "exit":
			return nil
		case "help":
			fmt.Fprint(s.out, helpText)
		case "count":
			fmt.Fprintf(s.out, "%d nodes\n", s.planner.NodeCount())
		case "node":
			s.cmdNode(fields[1:])
		case "shortest":
			s.cmdShortest(fields[1:])
		case "fastest":
			s.cmdFastest(fields[1:])
		case "save":
			s.cmdSave()
		case "print":
			s.cmdPrint()
		default:
			fmt.Fprintf(s.errOut, "Unknown command %q type help for help.\n", fields[0])
		}
	}
	return errors.Wrap(scanner.Err(), "reading commands")
}

func (s *Shell) cmdNode(args []string) {
	if len(args) < 1 {
		fmt.Fprint(s.errOut, "Invalid node command, see help.\n")
		return
	}
	idx, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprint(s.errOut, "Invalid node command, see help.\n")
		return
	}

	node := s.planner.SortedNodeByIndex(idx)
	if idx < 0 || node == nil {
		fmt.Fprint(s.errOut, "Invalid node parameter, see help.\n")
		return
	}

	fmt.Fprintf(s.out, "Node %d: id = %d is at %s\n",
		idx, node.ID, geo.FormatDMS(streetmap.NodeLocation(node)))
}

// parsePair reads the two node ids shared by shortest and fastest.
func parsePair(args []string) (osm.NodeID, osm.NodeID, bool) {
	if len(args) < 2 {
		return 0, 0, false
	}
	src, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	dst, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil {
		return 0, 0, false
	}
	return osm.NodeID(src), osm.NodeID(dst), true
}

func (s *Shell) cmdShortest(args []string) {
	src, dst, ok := parsePair(args)
	if !ok {
		fmt.Fprint(s.errOut, "Invalid shortest command, see help.\n")
		return
	}

	dist, path := s.planner.FindShortestPath(src, dst)
	if dist < 0 {
		fmt.Fprint(s.errOut, "No path exists.\n")
		return
	}

	s.lastValid = true
	s.lastShortest = true
	s.lastCost = dist
	s.lastSrc, s.lastDst = src, dst
	s.lastPath = path
	s.lastSteps = nil

	fmt.Fprintf(s.out, "Shortest path is %.1f mi.\n", dist)
}

func (s *Shell) cmdFastest(args []string) {
	src, dst, ok := parsePair(args)
	if !ok {
		fmt.Fprint(s.errOut, "Invalid fastest command, see help.\n")
		return
	}

	hours, steps := s.planner.FindFastestPath(src, dst)
	if hours < 0 {
		fmt.Fprint(s.errOut, "No path exists.\n")
		return
	}

	s.lastValid = true
	s.lastShortest = false
	s.lastCost = hours
	s.lastSrc, s.lastDst = src, dst
	s.lastSteps = steps
	s.lastPath = nil

	fmt.Fprintf(s.out, "%s\n", FormatTravelTime(hours))
}

// FormatTravelTime renders a duration in hours the way the fastest command
// reports it: whole minutes under an hour, otherwise hours, then minutes
// when minutes or seconds are nonzero, then seconds when nonzero.
func FormatTravelTime(hours float64) string {
	if hours < 1 {
		return fmt.Sprintf("Fastest path takes %d min.", int(hours*60))
	}

	totalSec := int(math.Round(hours * 3600))
	h := totalSec / 3600
	m := (totalSec % 3600) / 60
	sec := totalSec % 60

	out := fmt.Sprintf("Fastest path takes %d hr", h)
	if m > 0 || sec > 0 {
		out += fmt.Sprintf(" %d min", m)
	}
	if sec > 0 {
		out += fmt.Sprintf(" %d sec", sec)
	}
	return out + "."
}

func (s *Shell) cmdSave() {
	if !s.lastValid {
		fmt.Fprint(s.errOut, "No valid path to save, see help.\n")
		return
	}

	unit := "hr"
	if s.lastShortest {
		unit = "mi"
	}
	filename := fmt.Sprintf("%d_%d_%s%s.csv",
		s.lastSrc, s.lastDst, strconv.FormatFloat(s.lastCost, 'f', -1, 64), unit)

	sink, err := s.sinks.Create(filename)
	if err != nil || sink == nil {
		fmt.Fprint(s.errOut, "Unable to create save file.\n")
		return
	}
	defer sink.Close()

	w := dsv.NewWriter(sink, ',')
	rows := [][]string{{"mode", "node_id"}}
	if s.lastShortest {
		for _, id := range s.lastPath {
			rows = append(rows, []string{planner.ModeWalk.String(), strconv.FormatInt(int64(id), 10)})
		}
	} else {
		for _, step := range s.lastSteps {
			rows = append(rows, []string{step.Mode.String(), strconv.FormatInt(int64(step.NodeID), 10)})
		}
	}
	for _, row := range rows {
		if err := w.WriteRow(row); err != nil {
			fmt.Fprint(s.errOut, "Unable to create save file.\n")
			return
		}
	}
	if err := w.Flush(); err != nil {
		fmt.Fprint(s.errOut, "Unable to create save file.\n")
		return
	}

	s.log.Info("path saved", zap.String("file", filename))
	fmt.Fprintf(s.out, "Path saved to <results>/%s\n", filename)
}

func (s *Shell) cmdPrint() {
	if !s.lastValid {
		fmt.Fprint(s.errOut, "No valid path to print, see help.\n")
		return
	}

	if s.lastShortest {
		fmt.Fprintf(s.out, "Shortest path is %.1f mi.\n", s.lastCost)
		return
	}

	lines, err := s.planner.GetPathDescription(s.lastSteps)
	if err != nil {
		fmt.Fprint(s.errOut, "Unable to get path description.\n")
		return
	}
	for _, line := range lines {
		fmt.Fprintln(s.out, line)
	}
}
