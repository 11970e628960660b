package rinex

// Note: fmt.Scanf is pretty slow in Go!? https://github.com/golang/go/issues/12275#issuecomment-133796990

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"math"
	"math/big"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/de-bkg/gognss/pkg/crinex"
	"github.com/de-bkg/gognss/pkg/gnss"
	"github.com/mholt/archiver/v3"
)

// Options for global settings.
type Options struct {
	SatSys string // satellite systems GRE...

	// UseExternalTool makes Rnx2crxOpts/Crx2rnxOpts shell out to the
	// RNX2CRX/CRX2RNX binaries (Y. Hatanaka's original tools) instead of
	// using the pkg/crinex codec built into this module. Default false.
	UseExternalTool bool
}

// DiffOptions sets options for file comparison.
type DiffOptions struct {
	SatSys      string // satellite systems GRE...
	CheckHeader bool   // also compare the RINEX header
}

// Coord defines a XYZ coordinate.
type Coord struct {
	X, Y, Z float64
}

// CoordNEU defines a North-, East-, Up-coordinate or eccentrity
type CoordNEU struct {
	N, E, Up float64
}

// Obs specifies a RINEX observation.
type Obs struct {
	Val float64 // The observation itself.
	LLI int8    // LLI is the loss of lock indicator.
	SNR int8    // SNR is the signal-to-noise ratio.
}

// ObsCode is a RINEX observation code, e.g. "C1C" or "L2W".
type ObsCode string

// convStringsToObscodes converts a list of fields read from a header line into ObsCodes.
func convStringsToObscodes(ss []string) []ObsCode {
	codes := make([]ObsCode, len(ss))
	for i, s := range ss {
		codes[i] = ObsCode(s)
	}
	return codes
}

// EpochFlag classifies a RINEX Obs epoch record.
type EpochFlag int8

// Epoch flags defined by the RINEX Obs format.
const (
	EpochFlagOK                EpochFlag = 0
	EpochFlagPowerFailure      EpochFlag = 1
	EpochFlagMovingAntenna     EpochFlag = 2
	EpochFlagNewSiteOccupation EpochFlag = 3
	EpochFlagHeaderFollows     EpochFlag = 4
	EpochFlagExternalEvent     EpochFlag = 5
	EpochFlagCycleSlip         EpochFlag = 6
)

// parseEpochFlag parses the single-digit epoch flag field.
func parseEpochFlag(s string) (EpochFlag, error) {
	i, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return EpochFlagMovingAntenna, fmt.Errorf("parse epoch flag: %q: %v", s, err)
	}
	if i < 0 || i > 6 {
		return EpochFlagMovingAntenna, fmt.Errorf("invalid epoch flag: %d", i)
	}
	return EpochFlag(i), nil
}

// PRN specifies a GNSS satellite.
type PRN struct {
	Sys gnss.System // The satellite system.
	Num int8        // The satellite number.
	// flags
}

// ParsePRN parses a PRN string such as "G12" into a PRN, for callers outside
// the package (e.g. CLI flag parsing) that don't go through a decoder.
func ParsePRN(prn string) (PRN, error) {
	return newPRN(prn)
}

// newPRN returns a new PRN for the string prn that is e.g. G12.
func newPRN(prn string) (PRN, error) {
	sys, ok := sysPerAbbr[prn[:1]]
	if !ok {
		return PRN{}, fmt.Errorf("invalid satellite system: %q", prn)
	}

	snum, err := strconv.Atoi(prn[1:3])
	if err != nil {
		return PRN{}, fmt.Errorf("parse sat num: %q: %v", prn, err)
	}
	if snum < 1 || snum > 60 {
		return PRN{}, fmt.Errorf("check satellite number '%v%d'", sys, snum)
	}

	return PRN{Sys: sys, Num: int8(snum)}, nil
}

// String is a PRN Stringer.
func (prn PRN) String() string {
	return fmt.Sprintf("%s%02d", prn.Sys.Abbr(), prn.Num)
}

// ByPRN implements sort.Interface based on the PRN.
type ByPRN []PRN

func (p ByPRN) Len() int {
	return len(p)
}
func (p ByPRN) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}
func (p ByPRN) Less(i, j int) bool {
	return p[i].String() < p[j].String()
}

// SatObs contains all observations for a satellite per epoch.
type SatObs struct {
	Prn  PRN
	Obss map[ObsCode]Obs // C1C: Obs{Val:0, LLI:0, SNR:0}, L2W: Obs{Val:...},...
}

// SyncEpochs contains two epochs from different files with the same timestamp.
type SyncEpochs struct {
	Epo1 *Epoch
	Epo2 *Epoch
}

// Epoch contains a RINEX data epoch.
type Epoch struct {
	Time    time.Time // epoch time
	Flag    int8      // Epoch flag 0:OK, 1:power failure between previous and current epoch, >1 : Special event.
	NumSat  uint8     // The number of satellites in this epoch.
	ObsList []SatObs  // A list of observations per PRN.
}

// Print pretty prints the epoch.
func (epo *Epoch) Print() {
	fmt.Printf("%s Flag: %d #prn: %d\n", epo.Time.Format(time.RFC3339Nano), epo.Flag, epo.NumSat)
	for _, satObs := range epo.ObsList {
		fmt.Printf("%v -------------------------------------\n", satObs.Prn)
		for typ, obs := range satObs.Obss {
			fmt.Printf("%s: %+v\n", typ, obs)
		}
	}
}

// PrintTab prints the epoch in a tabular format.
func (epo *Epoch) PrintTab(opts Options) {
	for _, obsPerSat := range epo.ObsList {
		printSys := false
		for _, useSys := range opts.SatSys {
			if obsPerSat.Prn.Sys.Abbr() == string(useSys) {
				printSys = true
				break
			}
		}

		if !printSys {
			continue
		}

		fmt.Printf("%s %v ", epo.Time.Format(time.RFC3339Nano), obsPerSat.Prn)
		for _, obs := range obsPerSat.Obss {
			fmt.Printf("%14.03f ", obs.Val)
		}
		fmt.Printf("\n")
	}
}

// ObsMeta stores some metadata about a RINEX obs file.
type ObsMeta struct {
	NumEpochs      int                          `json:"numEpochs"`
	NumSatellites  int                          `json:"numSatellites"` // The number of satellites derived from the data.
	Sampling       time.Duration                `json:"sampling"`      // The sampling interval derived from the data.
	TimeOfFirstObs time.Time                    `json:"timeOfFirstObs"`
	TimeOfLastObs  time.Time                    `json:"timeOfLastObs"`
	ObsPerSat      map[gnss.PRN]map[ObsCode]int `json:"obsPerSat"` // Number of observations per PRN and observation-type.
}

// A ObsHeader provides the RINEX Observation Header information.
type ObsHeader struct {
	RINEXVersion float32     `validate:"gte=2,lte=4.1"` // RINEX Format version
	RINEXType    string      `validate:"eq=O"`          // RINEX File type. O for Obs
	SatSystem    gnss.System // Satellite System. System is "Mixed" if more than one.

	Pgm   string    // name of program creating this file
	RunBy string    // name of agency creating this file
	Date  time.Time // date and time of file creation

	Comments []string // * comment lines

	DOI          string   // digital object identifier
	StationInfos []string // SOLN STA / TRF or similar site information lines

	MarkerName, MarkerNumber, MarkerType string // antennas' marker name, *number and type

	Observer, Agency string

	ReceiverNumber, ReceiverType, ReceiverVersion string
	AntennaNumber, AntennaType                    string

	Position     Coord    // Geocentric approximate marker position [m]
	AntennaDelta CoordNEU // North,East,Up deltas in [m]

	ObsTypes map[gnss.System][]ObsCode // List of all observation types per GNSS.
	GloSlots map[gnss.PRN]int          // GLONASS slot/frequency numbers per satellite.

	SignalStrengthUnit string
	Interval           float64 `validate:"gte=0"` // Observation interval in seconds
	TimeOfFirstObs     time.Time
	TimeOfLastObs      time.Time
	LeapSeconds        int `validate:"gte=0"` // The current number of leap seconds
	NSatellites        int `validate:"gte=0"` // Number of satellites, for which observations are stored in the file

	Labels []string // all Header Labels found
}

// Validate validates the RINEX Obs header's field-level constraints (RINEX
// version range, non-negative counters, file type). It is valid if no error
// is returned.
func (hdr *ObsHeader) Validate() error {
	if err := validate.Struct(hdr); err != nil {
		return fmt.Errorf("obs header: %w", err)
	}
	if !hdr.TimeOfLastObs.IsZero() && hdr.TimeOfLastObs.Before(hdr.TimeOfFirstObs) {
		return fmt.Errorf("obs header: TIME OF LAST OBS before TIME OF FIRST OBS")
	}
	return nil
}

// SatSystems returns the satellite systems for which observation types are
// stored in the header, sorted by system.
func (hdr *ObsHeader) SatSystems() []gnss.System {
	syss := make([]gnss.System, 0, len(hdr.ObsTypes))
	for sys := range hdr.ObsTypes {
		syss = append(syss, sys)
	}
	sort.Slice(syss, func(i, j int) bool { return syss[i] < syss[j] })
	return syss
}

// ObsFile contains fields and methods for RINEX observation files.
// Use NewObsFile() to instantiate a new ObsFile.
type ObsFile struct {
	*RnxFil
	Header *ObsHeader
	Opts   *Options
}

// NewObsFile returns a new ObsFile.
func NewObsFile(filepath string) (*ObsFile, error) {
	// must file exist?
	obsFil := &ObsFile{RnxFil: &RnxFil{Path: filepath}, Header: &ObsHeader{}, Opts: &Options{}}
	err := obsFil.parseFilename()
	return obsFil, err
}

// Diff compares two RINEX obs files.
func (f *ObsFile) Diff(obsFil2 *ObsFile) error {
	// file 1
	r, err := os.Open(f.Path)
	if err != nil {
		return fmt.Errorf("open obs file: %v", err)
	}
	defer r.Close()
	dec, err := NewObsDecoder(r)
	if err != nil {
		return err
	}

	// file 2
	r2, err := os.Open(obsFil2.Path)
	if err != nil {
		return fmt.Errorf("open obs file: %v", err)
	}
	defer r2.Close()
	dec2, err := NewObsDecoder(r2)
	if err != nil {
		return err
	}

	nSyncEpochs := 0
	for dec.sync(dec2) {
		nSyncEpochs++
		syncEpo := dec.SyncEpoch()

		diff := diffEpo(syncEpo, *f.Opts)
		if diff != "" {
			fmt.Printf("diff: %s\n", diff)
		}
	}
	if err := dec.Err(); err != nil {
		return fmt.Errorf("read epochs error: %v", err)
	}

	return nil
}

// ComputeObsStats reads the file and returns some metadata.
func (f *ObsFile) ComputeObsStats() (stat ObsMeta, err error) {
	r, err := os.Open(f.Path)
	if err != nil {
		return
	}
	defer r.Close()
	dec, err := NewObsDecoder(r)
	if err != nil {
		return
	}
	f.Header = &dec.Header

	numSat := 60
	if f.Header.NSatellites > 0 {
		numSat = f.Header.NSatellites
	}

	satmap := make(map[string]int, numSat)

	obsPerSat := make(map[gnss.PRN]map[ObsCode]int, numSat)
	numOfEpochs := 0
	intervals := make([]time.Duration, 0, 10)
	var epo, epoPrev *Epoch

	for dec.NextEpoch() {
		numOfEpochs++
		epo = dec.Epoch()
		if numOfEpochs == 1 {
			stat.TimeOfFirstObs = epo.Time
		}

		for _, obsPerSatEntry := range epo.ObsList {
			prn := obsPerSatEntry.Prn
			gprn := gnss.PRN{Sys: prn.Sys, Num: prn.Num}

			// list of all satellites
			if _, exists := satmap[prn.String()]; !exists {
				satmap[prn.String()] = 1
			}

			// observations per sat and obs-type
			for obstype, obs := range obsPerSatEntry.Obss {
				if _, exists := obsPerSat[gprn]; !exists {
					obsPerSat[gprn] = map[ObsCode]int{}
				}
				if _, exists := obsPerSat[gprn][obstype]; !exists {
					obsPerSat[gprn][obstype] = 0
				}
				if obs.Val != 0 {
					obsPerSat[gprn][obstype]++
				}
			}
		}

		if epoPrev != nil && len(intervals) <= 10 {
			intervals = append(intervals, epo.Time.Sub(epoPrev.Time))
		}
		epoPrev = epo
	}
	if err = dec.Err(); err != nil {
		return
	}

	stat.TimeOfLastObs = epoPrev.Time
	stat.NumEpochs = numOfEpochs
	stat.NumSatellites = len(satmap)
	stat.ObsPerSat = obsPerSat

	// Check observation types, see #637
	if types, exists := f.Header.ObsTypes[gnss.SysGPS]; exists {
		for _, typ := range types {
			if typ == "L2P" || typ == "C2P" {
				f.Warnings = append(f.Warnings, "observation types 'L2P' and 'C2P' are not reasonable for GPS")
				break
			}
		}
	}

	// Sampling rate
	sort.Slice(intervals, func(i, j int) bool { return intervals[i] < intervals[j] })
	stat.Sampling = intervals[int(len(intervals)/2)]

	return
}

// Rnx3Filename returns the filename following the RINEX3 convention.
// In most cases we must read the read the header. The countrycode must come from an external source.
// DO NOT USE! Must parse header first!
func (f *ObsFile) Rnx3Filename() (string, error) {
	if f.DataFreq == "" || f.FilePeriod == "" {
		r, err := os.Open(f.Path)
		if err != nil {
			return "", err
		}
		defer r.Close()
		dec, err := NewObsDecoder(r)
		if err != nil {
			return "", err
		}

		if dec.Header.Interval != 0 {
			f.DataFreq = fmt.Sprintf("%02d%s", int(dec.Header.Interval), "S")
		}

		f.DataType = fmt.Sprintf("%s%s", dec.Header.SatSystem.Abbr(), "O")
	}

	// Station Identifier
	if len(f.FourCharID) != 4 {
		return "", fmt.Errorf("FourCharID: %s", f.FourCharID)
	}

	if len(f.CountryCode) != 3 {
		return "", fmt.Errorf("CountryCode: %s", f.CountryCode)
	}

	var fn strings.Builder
	fn.WriteString(f.FourCharID)
	fn.WriteString(strconv.Itoa(f.MonumentNumber))
	fn.WriteString(strconv.Itoa(f.ReceiverNumber))
	fn.WriteString(f.CountryCode)

	fn.WriteString("_")

	if f.DataSource == "" {
		fn.WriteString("U")
	} else {
		fn.WriteString(f.DataSource)
	}

	fn.WriteString("_")

	// StartTime
	//BRUX00BEL_R_20183101900_01H_30S_MO.rnx
	fn.WriteString(strconv.Itoa(f.StartTime.Year()))
	fn.WriteString(fmt.Sprintf("%03d", f.StartTime.YearDay()))
	fn.WriteString(fmt.Sprintf("%02d", f.StartTime.Hour()))
	fn.WriteString(fmt.Sprintf("%02d", f.StartTime.Minute()))
	fn.WriteString("_")

	fn.WriteString(f.FilePeriod)
	fn.WriteString("_")

	fn.WriteString(f.DataFreq)
	fn.WriteString("_")

	fn.WriteString(f.DataType)

	if f.Format == "crx" {
		fn.WriteString(".crx")
	} else {
		fn.WriteString(".rnx")
	}

	if len(fn.String()) != 38 {
		return "", fmt.Errorf("invalid filename: %s", fn.String())
	}

	// Rnx3 Filename: total: 41-42 obs, 37-38 eph.

	return fn.String(), nil
}

// Compress Hatanaka compresses the observation file and then gzips it. The
// source file is removed once the compression finishes without errors.
func (f *ObsFile) Compress() error {
	if f.Format == "crx" && f.Compression == "gz" {
		return nil
	}
	if f.Format == "rnx" && f.Compression != "" {
		return fmt.Errorf("compressed file is not Hatanaka compressed: %s", f.Path)
	}

	crxPath, err := Rnx2crx(f.Path)
	if err != nil {
		return err
	}
	if crxPath != f.Path {
		os.Remove(f.Path)
	}
	f.Path = crxPath
	f.Format = "crx"

	gzPath := f.Path + ".gz"
	if err := archiver.CompressFile(f.Path, gzPath); err != nil {
		return err
	}
	os.Remove(f.Path)
	f.Path = gzPath
	f.Compression = "gz"

	return nil
}

// Decompress reverses Compress: gunzips the file if needed, then runs it
// through Crx2rnx if it is Hatanaka compressed. The source file is removed
// at each step once the next representation exists.
func (f *ObsFile) Decompress() error {
	if f.Compression == "gz" {
		dst := strings.TrimSuffix(f.Path, ".gz")
		if err := archiver.DecompressFile(f.Path, dst); err != nil {
			return err
		}
		os.Remove(f.Path)
		f.Path = dst
		f.Compression = ""
	}

	if f.Format != "crx" {
		return nil
	}

	rnxPath, err := Crx2rnx(f.Path)
	if err != nil {
		return err
	}
	if rnxPath != f.Path {
		os.Remove(f.Path)
	}
	f.Path = rnxPath
	f.Format = "rnx"
	return nil
}

// IsHatanakaCompressed returns true if the obs file is Hatanaka compressed, otherwise false.
func (f *ObsFile) IsHatanakaCompressed() bool {
	return f.Format == "crx"
}

// Rnx2crx Hatanaka compresses a RINEX obs file (compact RINEX) and returns the compressed filename.
// The rnxFilename must be a valid RINEX filename. It uses the pkg/crinex codec
// built into this module; call Rnx2crxOpts with UseExternalTool set to shell
// out to Y. Hatanaka's original RNX2CRX instead.
// see http://terras.gsi.go.jp/ja/crx2rnx.html
func Rnx2crx(rnxFilename string) (string, error) {
	return Rnx2crxOpts(rnxFilename, &Options{})
}

// Rnx2crxOpts is Rnx2crx with explicit Options.
func Rnx2crxOpts(rnxFilename string, opts *Options) (string, error) {
	ext := strings.ToLower(filepath.Ext(rnxFilename))

	// Check if file is already Hatanaka compressed
	if ext == ".crx" || (len(ext) == 4 && ext[3] == 'd') {
		return rnxFilename, nil
	}

	dir, rnxFil := filepath.Split(rnxFilename)

	// Build name of target file
	crxFil := ""
	if Rnx2FileNamePattern.MatchString(rnxFil) {
		crxFil = Rnx2FileNamePattern.ReplaceAllString(rnxFil, "${2}${3}${4}${5}.${6}d")
	} else if Rnx3FileNamePattern.MatchString(rnxFil) {
		crxFil = Rnx3FileNamePattern.ReplaceAllString(rnxFil, "${2}.crx")
	} else {
		return "", fmt.Errorf("file %s with no standard RINEX extension", rnxFil)
	}

	if crxFil == "" || rnxFil == crxFil {
		return "", fmt.Errorf("could not build compressed filename for %s", rnxFil)
	}
	crxFilePath := filepath.Join(dir, crxFil)

	if opts != nil && opts.UseExternalTool {
		if err := rnx2crxExternal(rnxFilename, crxFilePath); err != nil {
			return "", err
		}
		return crxFilePath, nil
	}

	if err := rnx2crxInternal(rnxFilename, crxFilePath); err != nil {
		return "", err
	}
	return crxFilePath, nil
}

// rnx2crxInternal streams rnxFilename through the pkg/crinex encoder,
// writing the CRINEX result to crxFilePath.
func rnx2crxInternal(rnxFilename, crxFilePath string) error {
	in, err := os.Open(rnxFilename)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(crxFilePath)
	if err != nil {
		return err
	}
	defer out.Close()

	enc, err := crinex.NewEncoder(out, "gognss", time.Now(), "3.0")
	if err != nil {
		return fmt.Errorf("crinex encoder: %w", err)
	}

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 4096), 1<<20)
	headerDone := false
	firstEpoch := true
	for sc.Scan() {
		line := sc.Text()
		if !headerDone {
			if err := enc.WriteHeaderLine(line); err != nil {
				return err
			}
			if len(line) >= 60 && strings.Contains(line[60:], "END OF HEADER") {
				headerDone = true
			}
			continue
		}
		if line == "" {
			continue
		}
		numSat, ok := epochSatCount(line)
		if !ok {
			return fmt.Errorf("rnx2crx: unrecognized epoch record: %q", line)
		}
		satLines := make([]string, 0, numSat)
		for i := 0; i < numSat; i++ {
			if !sc.Scan() {
				return fmt.Errorf("rnx2crx: truncated epoch, expected %d satellite lines", numSat)
			}
			satLines = append(satLines, sc.Text())
		}
		if err := enc.WriteEpoch(line, satLines, firstEpoch); err != nil {
			return err
		}
		firstEpoch = false
	}
	if err := sc.Err(); err != nil {
		return err
	}
	return enc.Flush()
}

// epochSatCount returns the satellite count encoded in a RINEX 2 or RINEX
// 3/4 epoch record line, and whether line was recognized as an epoch line.
func epochSatCount(line string) (int, bool) {
	if strings.HasPrefix(line, "> ") {
		if len(line) < 35 {
			return 0, false
		}
		n, err := strconv.Atoi(strings.TrimSpace(line[32:35]))
		return n, err == nil
	}
	if len(line) < 32 {
		return 0, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(line[29:32]))
	return n, err == nil
}

// rnx2crxExternal shells out to Y. Hatanaka's RNX2CRX binary.
func rnx2crxExternal(rnxFilename, crxFilePath string) error {
	tool, err := exec.LookPath("RNX2CRX")
	if err != nil {
		return err
	}

	cmd := exec.Command(tool, rnxFilename, "-d", "-f")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cmd %s failed: %v: %s", tool, err, stderr.Bytes())
	}
	if _, err := os.Stat(crxFilePath); os.IsNotExist(err) {
		return fmt.Errorf("compressed file does not exist: %s", crxFilePath)
	}
	return nil
}

// Crx2rnx decompresses a Hatanaka-compressed RINEX obs file and returns the decompressed filename.
// The crxFilename must be a valid RINEX filename. It uses the pkg/crinex codec
// built into this module; call Crx2rnxOpts with UseExternalTool set to shell
// out to Y. Hatanaka's original CRX2RNX instead.
// see http://terras.gsi.go.jp/ja/crx2rnx.html
func Crx2rnx(crxFilename string) (string, error) {
	return Crx2rnxOpts(crxFilename, &Options{})
}

// Crx2rnxOpts is Crx2rnx with explicit Options.
func Crx2rnxOpts(crxFilename string, opts *Options) (string, error) {
	ext := strings.ToLower(filepath.Ext(crxFilename))

	// Check if file is already Hata decompressed
	if ext == ".rnx" || (len(ext) == 4 && ext[3] == 'o') {
		return crxFilename, nil
	}

	dir, crxFil := filepath.Split(crxFilename)

	// Build name of target file
	rnxFil := ""
	if Rnx2FileNamePattern.MatchString(crxFil) {
		rnxFil = Rnx2FileNamePattern.ReplaceAllString(crxFil, "${2}${3}${4}${5}.${6}o")
	} else if Rnx3FileNamePattern.MatchString(crxFil) {
		rnxFil = Rnx3FileNamePattern.ReplaceAllString(crxFil, "${2}.rnx")
	} else {
		return "", fmt.Errorf("file %s with no standard RINEX extension", crxFil)
	}

	if rnxFil == "" || rnxFil == crxFil {
		return "", fmt.Errorf("could not build uncompressed filename for %s", crxFil)
	}
	rnxFilePath := filepath.Join(dir, rnxFil)

	if opts != nil && opts.UseExternalTool {
		if err := crx2rnxExternal(crxFilename, rnxFilePath); err != nil {
			return "", err
		}
		return rnxFilePath, nil
	}

	if err := crx2rnxInternal(crxFilename, rnxFilePath); err != nil {
		return "", err
	}
	return rnxFilePath, nil
}

// crx2rnxInternal decompresses crxFilename via the pkg/crinex decoder,
// which implements io.Reader, and copies the plain RINEX text to rnxFilePath.
func crx2rnxInternal(crxFilename, rnxFilePath string) error {
	in, err := os.Open(crxFilename)
	if err != nil {
		return err
	}
	defer in.Close()

	dec, err := crinex.NewDecoder(in)
	if err != nil {
		return fmt.Errorf("crinex decoder: %w", err)
	}

	out, err := os.Create(rnxFilePath)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := io.Copy(out, dec); err != nil {
		return fmt.Errorf("crx2rnx: %w", err)
	}
	return nil
}

// crx2rnxExternal shells out to Y. Hatanaka's CRX2RNX binary.
func crx2rnxExternal(crxFilename, rnxFilePath string) error {
	tool, err := exec.LookPath("CRX2RNX")
	if err != nil {
		return err
	}

	cmd := exec.Command(tool, crxFilename, "-d", "-f")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("cmd %s failed: %v: %s", tool, err, stderr.Bytes())
	}
	if _, err := os.Stat(rnxFilePath); os.IsNotExist(err) {
		return fmt.Errorf("compressed file does not exist: %s", rnxFilePath)
	}
	return nil
}

func parseFlag(str string) (int, error) {
	if str == " " {
		return 0, nil
	}
	return strconv.Atoi(str)
}

// get decimal part of a float.
func getDecimal(f float64) float64 {
	fBig := big.NewFloat(f)
	fint, _ := fBig.Int(nil)
	intf := new(big.Float).SetInt(fint)
	resBig := new(big.Float).Sub(fBig, intf)
	ff, _ := resBig.Float64()
	return ff
}

// compare two epochs
func diffEpo(epochs SyncEpochs, opts Options) string {
	epo1, epo2 := epochs.Epo1, epochs.Epo2
	epoTime := epo1.Time

	for _, obs := range epo1.ObsList {
		printSys := false
		for _, useSys := range opts.SatSys {
			if obs.Prn.Sys.Abbr() == string(useSys) {
				printSys = true
				break
			}
		}

		if !printSys {
			continue
		}

		obs2, err := getObsByPRN(epo2.ObsList, obs.Prn)
		if err != nil {
			fmt.Printf("%v\n", err)
			continue
		}

		diffObs(obs, obs2, epoTime, obs.Prn)
	}

	return ""
}

func getObsByPRN(obslist []SatObs, prn PRN) (SatObs, error) {
	for _, obs := range obslist {
		if obs.Prn == prn {
			return obs, nil
		}
	}

	return SatObs{}, fmt.Errorf("no oberservations found for prn %v", prn)
}

func diffObs(obs1, obs2 SatObs, epoTime time.Time, prn PRN) string {
	deltaPhase := 0.005
	checkSNR := false
	for k, o1 := range obs1.Obss {
		if o2, ok := obs2.Obss[k]; ok {
			val1, val2 := o1.Val, o2.Val
			if strings.HasPrefix(string(k), "L") { // phase observations
				val1 = getDecimal(val1)
				val2 = getDecimal(val2)
			}
			if (o1.LLI != o2.LLI) || (math.Abs(val1-val2) > deltaPhase) {
				fmt.Printf("%s %v %02d %s %s %14.03f %d %d | %14.03f %d %d\n", epoTime.Format(time.RFC3339Nano), prn.Sys, prn.Num, string(k)[:1], k, val1, o1.LLI, o1.SNR, val2, o2.LLI, o2.SNR)
			} else if checkSNR && o1.SNR != o2.SNR {
				fmt.Printf("%s %v %02d %s %s %14.03f %d %d | %14.03f %d %d\n", epoTime.Format(time.RFC3339Nano), prn.Sys, prn.Num, string(k)[:1], k, val1, o1.LLI, o1.SNR, val2, o2.LLI, o2.SNR)
			}
		} else {
			fmt.Printf("Key %q does not exist\n", k)
		}
	}

	return ""
}
