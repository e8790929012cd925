// Command mp4saninfo inspects an MP4 file's top-level box structure and,
// optionally, sanitizes it.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/mp4san/go-mp4san"
)

// Format specifies the output format.
type Format int

const (
	FormatText Format = iota
	FormatJSON
)

// BoxNode is a box in the printed tree structure.
type BoxNode struct {
	Type       string         `json:"type"`
	Size       uint64         `json:"size"`
	Version    *uint8         `json:"version,omitempty"`
	Flags      *uint32        `json:"flags,omitempty"`
	Info       map[string]any `json:"info,omitempty"`
	DataLength *int           `json:"dataLength,omitempty"`
	Children   []BoxNode      `json:"children,omitempty"`
}

func main() {
	formatFlag := flag.String("format", "text", "output format: text (default), json")
	sanitizeFlag := flag.String("sanitize", "", "sanitize the input and write the result to this file")
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "usage: %s [--format=text|json] [--sanitize=out.mp4] <file.mp4>\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() < 1 {
		flag.Usage()
		os.Exit(1)
	}

	format := FormatText
	switch strings.ToLower(*formatFlag) {
	case "json":
		format = FormatJSON
	case "text":
		format = FormatText
	default:
		fmt.Fprintf(os.Stderr, "unknown format: %s\n", *formatFlag)
		os.Exit(1)
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error opening file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	if *sanitizeFlag != "" {
		if err := runSanitize(f, *sanitizeFlag); err != nil {
			fmt.Fprintf(os.Stderr, "sanitize error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	var root []BoxNode

	sc := mp4san.NewScanner(mp4san.NewByteSource(f))
	for sc.Next() {
		e := sc.Entry()
		node := BoxNode{Type: e.Type.String(), Size: e.Size}

		switch e.Type {
		case mp4san.TypeMoov:
			buf := make([]byte, e.DataSize())
			if err := sc.ReadBody(buf); err != nil {
				fmt.Fprintf(os.Stderr, "error reading moov: %v\n", err)
				continue
			}
			r := mp4san.NewReader(buf)
			node.Children = buildTree(&r)

		case mp4san.TypeFtyp:
			buf := make([]byte, e.DataSize())
			if err := sc.ReadBody(buf); err != nil {
				fmt.Fprintf(os.Stderr, "error reading ftyp: %v\n", err)
				continue
			}
			node.Info = ftypInfo(buf)

		case mp4san.TypeMdat, mp4san.TypeFree:
			dataLen := int(e.DataSize())
			node.DataLength = &dataLen
		}

		root = append(root, node)
	}
	if err := sc.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "scan error: %v\n", err)
		os.Exit(1)
	}

	printTree(root, format)
}

func runSanitize(f *os.File, outPath string) error {
	sanitized, err := mp4san.Sanitize(mp4san.NewByteSource(f))
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.Write(sanitized.Metadata); err != nil {
		return err
	}
	if _, err := f.Seek(int64(sanitized.Data.Offset), 0); err != nil {
		return err
	}
	_, err = copyN(out, f, int64(sanitized.Data.Len))
	return err
}

func copyN(dst *os.File, src *os.File, n int64) (int64, error) {
	buf := make([]byte, 1<<20)
	var written int64
	for written < n {
		chunk := int64(len(buf))
		if remaining := n - written; remaining < chunk {
			chunk = remaining
		}
		nr, err := src.Read(buf[:chunk])
		if nr > 0 {
			nw, werr := dst.Write(buf[:nr])
			written += int64(nw)
			if werr != nil {
				return written, werr
			}
		}
		if err != nil {
			return written, err
		}
	}
	return written, nil
}

func ftypInfo(data []byte) map[string]any {
	info := make(map[string]any)
	if len(data) < 8 {
		return info
	}
	info["brand"] = string(data[0:4])
	info["version"] = uint32(data[4])<<24 | uint32(data[5])<<16 | uint32(data[6])<<8 | uint32(data[7])
	var compat []string
	for i := 8; i+4 <= len(data); i += 4 {
		compat = append(compat, string(data[i:i+4]))
	}
	if len(compat) > 0 {
		info["compatible"] = compat
	}
	return info
}

func buildTree(r *mp4san.Reader) []BoxNode {
	var nodes []BoxNode

	for r.Next() {
		boxType := r.Type()
		node := BoxNode{Type: boxType.String(), Size: r.Size()}

		if mp4san.IsFullBox(boxType) {
			v := r.Version()
			fl := r.Flags()
			node.Version = &v
			node.Flags = &fl
		}

		node.Info = collectBoxInfo(r)

		if mp4san.IsContainerBox(boxType) {
			r.Enter()
			node.Children = buildTree(r)
			r.Exit()
		} else if boxType == mp4san.TypeStsd {
			r.Enter()
			r.Skip(4)
			for r.Next() {
				child := BoxNode{Type: r.Type().String(), Size: r.Size()}
				dataLen := len(r.Data())
				child.DataLength = &dataLen
				node.Children = append(node.Children, child)
			}
			r.Exit()
		}

		nodes = append(nodes, node)
	}

	return nodes
}

func collectBoxInfo(r *mp4san.Reader) map[string]any {
	info := make(map[string]any)

	switch r.Type() {
	case mp4san.TypeMvhd:
		m := mp4san.ReadMvhd(r.Data(), r.Version())
		info["timescale"] = m.TimeScale
		info["duration"] = m.Duration
		info["nextTrackId"] = m.NextTrackID

	case mp4san.TypeTkhd:
		t := mp4san.ReadTkhd(r.Data(), r.Version())
		info["trackId"] = t.TrackID
		info["duration"] = t.Duration
		info["width"] = t.Width >> 16
		info["height"] = t.Height >> 16

	case mp4san.TypeMdhd:
		m := mp4san.ReadMdhd(r.Data(), r.Version())
		info["timescale"] = m.TimeScale
		info["duration"] = m.Duration

	case mp4san.TypeHdlr:
		ht := mp4san.ReadHdlr(r.RawBox())
		info["handlerType"] = ht.String()

	case mp4san.TypeStco, mp4san.TypeStss, mp4san.TypeStts, mp4san.TypeStsc, mp4san.TypeCo64, mp4san.TypeElst:
		info["entries"] = mp4san.EntryCount(r.Data(), 0)

	case mp4san.TypeStsz:
		info["entries"] = mp4san.EntryCount(r.Data(), 4)

	case mp4san.TypeMdat:
		info["dataLength"] = len(r.Data())

	default:
		if !mp4san.IsContainerBox(r.Type()) && len(r.Data()) > 0 {
			info["dataLength"] = len(r.Data())
		}
	}

	return info
}

func printTree(nodes []BoxNode, format Format) {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(nodes); err != nil {
			fmt.Fprintf(os.Stderr, "error encoding JSON: %v\n", err)
		}
	case FormatText:
		for _, node := range nodes {
			printNodeText(node, 0)
		}
	}
}

func printNodeText(node BoxNode, depth int) {
	indent := strings.Repeat("  ", depth)
	fmt.Printf("%s[%s] size=%d", indent, node.Type, node.Size)

	if node.Version != nil {
		fmt.Printf(" v=%d", *node.Version)
	}
	if node.Flags != nil {
		fmt.Printf(" flags=0x%06x", *node.Flags)
	}
	for key, val := range node.Info {
		fmt.Printf(" %s=%v", key, val)
	}
	if node.DataLength != nil {
		fmt.Printf(" dataLen=%d", *node.DataLength)
	}
	fmt.Println()

	for _, child := range node.Children {
		printNodeText(child, depth+1)
	}
}
