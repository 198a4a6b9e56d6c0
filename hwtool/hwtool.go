// Package hwtool locates the vendor diagnostic tools applicable to the
// current host. Tools arrive either as operator-attached resource files with
// fixed names or as packages already installed on the system. A tool that is
// absent is skipped, never an error.
package hwtool

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/hardware-observer/hardware-exporter/slog"
	"github.com/hardware-observer/hardware-exporter/util"
)

// Tool is one vendor diagnostic utility.
type Tool string

const (
	Storcli    Tool = "storcli"
	Perccli    Tool = "perccli"
	Sas2ircu   Tool = "sas2ircu"
	Sas3ircu   Tool = "sas3ircu"
	Ssacli     Tool = "ssacli"
	IpmiDCMI   Tool = "ipmi_dcmi"
	IpmiSEL    Tool = "ipmi_sel"
	IpmiSensor Tool = "ipmi_sensor"
	Redfish    Tool = "redfish"
)

// AllTools lists every known tool in stable order.
var AllTools = []Tool{
	Storcli, Perccli, Sas2ircu, Sas3ircu, Ssacli,
	IpmiDCMI, IpmiSEL, IpmiSensor, Redfish,
}

// Collectors returns the collector names a tool enables.
func (t Tool) Collectors() []string {
	switch t {
	case Storcli:
		return []string{"mega_raid"}
	case Perccli:
		return []string{"poweredge_raid"}
	case Sas2ircu:
		return []string{"lsi_sas_2"}
	case Sas3ircu:
		return []string{"lsi_sas_3"}
	case Ssacli:
		return []string{"hpe_ssa"}
	case IpmiDCMI:
		return []string{"ipmi_dcmi"}
	case IpmiSEL:
		return []string{"ipmi_sel"}
	case IpmiSensor:
		return []string{"ipmi_sensor"}
	case Redfish:
		return []string{"redfish"}
	}
	return nil
}

// Resource slot filenames are fixed. A .deb slot marks the CLI as
// operator-provided via package install; a bare binary slot is copied into
// the tools dir by installSlots.
var resourceSlots = map[Tool]string{
	Storcli:  "storcli.deb",
	Perccli:  "perccli.deb",
	Sas2ircu: "sas2ircu",
	Sas3ircu: "sas3ircu",
}

// binarySlots are the slots whose content is the tool executable itself.
var binarySlots = map[Tool]bool{
	Sas2ircu: true,
	Sas3ircu: true,
}

// System vendor strings as reported by dmidecode.
const (
	vendorDell = "Dell Inc."
	vendorHP   = "HP"
	vendorHPE  = "HPE"
)

// Storage controller vendor as reported by lspci.
const storageVendorBroadcom = "Broadcom / LSI"

// Config controls where the locator looks.
type Config struct {
	// ToolsDir is where binary resource slots are installed (/usr/sbin).
	ToolsDir string
	// ResourceDir holds the operator-attached resource slot files.
	ResourceDir string
	// Redfish is true when BMC connection parameters are configured.
	Redfish bool
}

// Locator detects which tools apply to this host and where their binaries
// live. It is safe for concurrent use; Detect may be re-run at any time
// (the resource dir watcher does so).
type Locator struct {
	cfg Config

	mu    sync.RWMutex
	avail map[Tool]string // tool -> binary path; "" for redfish
}

func NewLocator(cfg Config) *Locator {
	return &Locator{cfg: cfg, avail: make(map[Tool]string)}
}

// The host probes are package vars so tests can substitute canned output.
var (
	readSystemVendor = func() (string, error) {
		var vendor string
		err := util.ReadCommand(func(line string) error {
			if vendor == "" {
				vendor = strings.TrimSpace(line)
			}
			return nil
		}, "dmidecode", "-s", "system-manufacturer")
		return vendor, err
	}

	readPCIDevices = func() ([]string, error) {
		var lines []string
		err := util.ReadCommand(func(line string) error {
			lines = append(lines, line)
			return nil
		}, "lspci", "-D", "-nnm")
		return lines, err
	}
)

// Detect refreshes tool availability from hardware probes, resource slots,
// and the PATH. Probe failures degrade to skipping the affected tools.
func (l *Locator) Detect() error {
	if err := l.installSlots(); err != nil {
		return err
	}

	sysVendor, err := readSystemVendor()
	if err != nil {
		slog.Debugf("system vendor probe failed: %v", err)
	}
	pci, err := readPCIDevices()
	if err != nil {
		slog.Debugf("pci probe failed: %v", err)
	}
	lsi := hasLSIStorage(pci)

	avail := make(map[Tool]string)
	if p := l.findBinary("storcli", "storcli64", "/opt/MegaRAID/storcli/storcli64"); p != "" && (lsi || l.slotAttached(Storcli)) {
		avail[Storcli] = p
	}
	if p := l.findBinary("perccli", "perccli64", "/opt/MegaRAID/perccli/perccli64"); p != "" && (sysVendor == vendorDell || l.slotAttached(Perccli)) {
		avail[Perccli] = p
	}
	if p := l.findBinary("sas2ircu"); p != "" {
		avail[Sas2ircu] = p
	}
	if p := l.findBinary("sas3ircu"); p != "" {
		avail[Sas3ircu] = p
	}
	if (sysVendor == vendorHP || sysVendor == vendorHPE) && util.InPath("ssacli") {
		avail[Ssacli] = "ssacli"
	}
	if util.InPath("ipmi-dcmi") {
		avail[IpmiDCMI] = "ipmi-dcmi"
	}
	if util.InPath("ipmi-sel") {
		avail[IpmiSEL] = "ipmi-sel"
	}
	if util.InPath("ipmimonitoring") {
		avail[IpmiSensor] = "ipmimonitoring"
	}
	if l.cfg.Redfish {
		avail[Redfish] = ""
	}

	l.mu.Lock()
	l.avail = avail
	l.mu.Unlock()
	slog.Infof("detected tools: %v", toolNames(avail))
	return nil
}

// installSlots copies attached binary slots into the tools dir with mode
// 0755. An empty slot file is a placeholder for an unattached resource and
// is ignored.
func (l *Locator) installSlots() error {
	if l.cfg.ResourceDir == "" {
		return nil
	}
	for tool, name := range resourceSlots {
		if !binarySlots[tool] {
			continue
		}
		src := filepath.Join(l.cfg.ResourceDir, name)
		fi, err := os.Stat(src)
		if err != nil || fi.Size() == 0 {
			continue
		}
		dst := filepath.Join(l.cfg.ToolsDir, name)
		if err := installBinary(src, dst); err != nil {
			return fmt.Errorf("installing %s: %v", name, err)
		}
	}
	return nil
}

func installBinary(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0755)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// slotAttached reports whether the resource slot file for a tool is present
// and non-empty.
func (l *Locator) slotAttached(t Tool) bool {
	name, ok := resourceSlots[t]
	if !ok || l.cfg.ResourceDir == "" {
		return false
	}
	fi, err := os.Stat(filepath.Join(l.cfg.ResourceDir, name))
	return err == nil && fi.Size() > 0
}

// findBinary returns the first of candidates that exists: names are checked
// in the tools dir, as absolute paths, then in the PATH.
func (l *Locator) findBinary(candidates ...string) string {
	for _, c := range candidates {
		if l.cfg.ToolsDir != "" && !filepath.IsAbs(c) {
			p := filepath.Join(l.cfg.ToolsDir, c)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				return p
			}
		}
		if filepath.IsAbs(c) {
			if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
				return c
			}
			continue
		}
		if util.InPath(c) {
			return c
		}
	}
	return ""
}

// hasLSIStorage reports whether lspci lists a Broadcom/LSI RAID or SAS
// controller.
func hasLSIStorage(lines []string) bool {
	for _, line := range lines {
		class, vendor := parsePCILine(line)
		if !strings.Contains(vendor, storageVendorBroadcom) && !strings.Contains(vendor, "LSI Logic") {
			continue
		}
		if strings.Contains(class, "RAID bus controller") || strings.Contains(class, "Serial Attached SCSI controller") {
			return true
		}
	}
	return false
}

// parsePCILine pulls the class and vendor fields out of one line of
// `lspci -D -nnm` output, where fields after the slot are double-quoted.
func parsePCILine(line string) (class, vendor string) {
	var fields []string
	for {
		i := strings.IndexByte(line, '"')
		if i < 0 {
			break
		}
		j := strings.IndexByte(line[i+1:], '"')
		if j < 0 {
			break
		}
		fields = append(fields, line[i+1:i+1+j])
		line = line[i+j+2:]
	}
	if len(fields) >= 2 {
		return fields[0], fields[1]
	}
	return "", ""
}

// Available reports whether the tool was detected.
func (l *Locator) Available(t Tool) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.avail[t]
	return ok
}

// Path returns the resolved binary path for a detected tool.
func (l *Locator) Path(t Tool) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.avail[t]
}

// Tools returns the detected tools in stable order.
func (l *Locator) Tools() []Tool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var ts []Tool
	for t := range l.avail {
		ts = append(ts, t)
	}
	sort.Slice(ts, func(i, j int) bool { return ts[i] < ts[j] })
	return ts
}

// EnabledCollectors returns the collector names enabled by the detected
// tools.
func (l *Locator) EnabledCollectors() []string {
	var names []string
	for _, t := range l.Tools() {
		names = append(names, t.Collectors()...)
	}
	return names
}

func toolNames(m map[Tool]string) []string {
	var ns []string
	for t := range m {
		ns = append(ns, string(t))
	}
	sort.Strings(ns)
	return ns
}
