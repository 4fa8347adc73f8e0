package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	wasmmemory "github.com/wippyai/wasm-memory"

	"github.com/wippyai/wasm-memory/pool"
)

func main() {
	var (
		heapSize    = flag.Int("heap", 64*1024, "Pool heap size in bytes")
		modeName    = flag.String("mode", "pool", "Allocation mode: pool or system")
		script      = flag.String("script", "", "Workload to run (comma-separated: alloc:N, realloc:I:N, free:I)")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
		verbose     = flag.Bool("v", false, "Log allocator diagnostics to stderr")
	)
	flag.Parse()

	if *script == "" && !*interactive {
		fmt.Fprintln(os.Stderr, "Usage: memview -script alloc:100,realloc:1:200,free:1 [-heap bytes] [-mode pool|system]")
		fmt.Fprintln(os.Stderr, "       memview -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		logger := zap.Must(zap.NewDevelopment())
		defer logger.Sync()
		wasmmemory.SetLogger(logger)
		pool.SetLogger(logger)
	}

	s, err := newSession(*modeName, *heapSize)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer s.close()

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode requires a terminal")
			os.Exit(1)
		}
		if err := runInteractive(s); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runScript(s, *script); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runScript(s *session, script string) error {
	for _, step := range strings.Split(script, ",") {
		cmd := strings.ReplaceAll(strings.TrimSpace(step), ":", " ")
		result, err := s.apply(cmd)
		if err != nil {
			return fmt.Errorf("step %q: %w", step, err)
		}
		fmt.Println(result)
	}

	fmt.Println()
	fmt.Println(s.renderBlocks())
	fmt.Println(s.renderStats())
	return nil
}

// block is one live allocation in the session.
type block struct {
	id  int
	buf []byte
}

// session drives a Manager through alloc/realloc/free commands and tracks
// live blocks by a small numeric handle.
type session struct {
	mgr    *wasmmemory.Manager
	mode   string
	blocks []block
	nextID int
}

func newSession(modeName string, heapSize int) (*session, error) {
	mgr := wasmmemory.NewManager()

	var err error
	switch modeName {
	case "pool":
		err = mgr.Init(wasmmemory.ModePool, wasmmemory.Options{
			Pool: wasmmemory.PoolOptions{HeapBuf: make([]byte, heapSize)},
		})
	case "system":
		err = mgr.Init(wasmmemory.ModeSystem, wasmmemory.Options{})
	default:
		return nil, fmt.Errorf("unknown mode %q (want pool or system)", modeName)
	}
	if err != nil {
		return nil, err
	}
	return &session{mgr: mgr, mode: modeName, nextID: 1}, nil
}

func (s *session) close() {
	for _, b := range s.blocks {
		s.mgr.Free(b.buf)
	}
	s.blocks = nil
	if err := s.mgr.Destroy(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}
}

// apply executes one command ("alloc N", "realloc I N", "free I", "stats")
// and returns a one-line result.
func (s *session) apply(cmd string) (string, error) {
	fields := strings.Fields(cmd)
	if len(fields) == 0 {
		return "", fmt.Errorf("empty command")
	}

	switch fields[0] {
	case "alloc":
		size, err := argUint(fields, 1)
		if err != nil {
			return "", err
		}
		buf := s.mgr.Allocate(size)
		if buf == nil {
			return "", fmt.Errorf("alloc %d failed: backend exhausted", size)
		}
		id := s.nextID
		s.nextID++
		s.blocks = append(s.blocks, block{id: id, buf: buf})
		return fmt.Sprintf("#%d = alloc %d -> %d bytes", id, size, len(buf)), nil

	case "realloc":
		id, err := argUint(fields, 1)
		if err != nil {
			return "", err
		}
		size, err := argUint(fields, 2)
		if err != nil {
			return "", err
		}
		i := s.find(int(id))
		if i < 0 {
			return "", fmt.Errorf("no block #%d", id)
		}
		buf := s.mgr.Reallocate(s.blocks[i].buf, size)
		if buf == nil {
			return "", fmt.Errorf("realloc #%d to %d failed", id, size)
		}
		s.blocks[i].buf = buf
		return fmt.Sprintf("#%d = realloc -> %d bytes", id, len(buf)), nil

	case "free":
		id, err := argUint(fields, 1)
		if err != nil {
			return "", err
		}
		i := s.find(int(id))
		if i < 0 {
			return "", fmt.Errorf("no block #%d", id)
		}
		s.mgr.Free(s.blocks[i].buf)
		s.blocks = append(s.blocks[:i], s.blocks[i+1:]...)
		return fmt.Sprintf("#%d freed", id), nil

	case "stats":
		return s.renderStats(), nil

	default:
		return "", fmt.Errorf("unknown command %q", fields[0])
	}
}

func (s *session) find(id int) int {
	for i := range s.blocks {
		if s.blocks[i].id == id {
			return i
		}
	}
	return -1
}

func (s *session) renderBlocks() string {
	if len(s.blocks) == 0 {
		return "no live blocks"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d live block(s):\n", len(s.blocks))
	for _, blk := range s.blocks {
		fmt.Fprintf(&b, "  #%-4d %6d bytes\n", blk.id, len(blk.buf))
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func (s *session) renderStats() string {
	info, ok := s.mgr.AllocInfo()
	if !ok {
		return fmt.Sprintf("mode %s: no statistics contract", s.mode)
	}
	return fmt.Sprintf("pool: %d/%d bytes free, high-water %d",
		info.TotalFree, info.TotalSize, info.HighmarkSize)
}

func argUint(fields []string, i int) (uint32, error) {
	if i >= len(fields) {
		return 0, fmt.Errorf("missing argument")
	}
	n, err := strconv.ParseUint(fields[i], 10, 32)
	if err != nil {
		return 0, fmt.Errorf("bad argument %q: %w", fields[i], err)
	}
	return uint32(n), nil
}
