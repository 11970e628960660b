package rinex

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/de-bkg/gognss/pkg/gnss"
)

// Write encodes the observation header in RINEX format to w.
func (hdr *ObsHeader) Write(w io.Writer) error {
	fmt.Fprintf(w, "%9.2f%11s%-20s%-1s%19s%s\n", hdr.RINEXVersion, "", "OBSERVATION DATA", hdr.SatSystem.Abbr(), "", "RINEX VERSION / TYPE")

	date := hdr.Date.UTC().Format("20060102 150405") + " UTC"
	fmt.Fprintf(w, "%-20s%-20s%-20s%s\n", hdr.Pgm, hdr.RunBy, date, "PGM / RUN BY / DATE")

	for _, c := range hdr.Comments {
		fmt.Fprintf(w, "%-60s%s\n", c, "COMMENT")
	}

	if hdr.DOI != "" {
		fmt.Fprintf(w, "%-60s%s\n", hdr.DOI, "DOI")
	}

	for _, si := range hdr.StationInfos {
		fmt.Fprintf(w, "%-60s%s\n", si, "STATION INFORMATION")
	}

	fmt.Fprintf(w, "%-60s%s\n", hdr.MarkerName, "MARKER NAME")
	fmt.Fprintf(w, "%-60s%s\n", hdr.MarkerNumber, "MARKER NUMBER")
	fmt.Fprintf(w, "%-60s%s\n", hdr.MarkerType, "MARKER TYPE")
	fmt.Fprintf(w, "%-20s%-40s%s\n", hdr.Observer, hdr.Agency, "OBSERVER / AGENCY")
	fmt.Fprintf(w, "%-20s%-20s%-20s%s\n", hdr.ReceiverNumber, hdr.ReceiverType, hdr.ReceiverVersion, "REC # / TYPE / VERS")
	fmt.Fprintf(w, "%-20s%-40s%s\n", hdr.AntennaNumber, hdr.AntennaType, "ANT # / TYPE")
	fmt.Fprintf(w, "%14.4f%14.4f%14.4f%18s%s\n", hdr.Position.X, hdr.Position.Y, hdr.Position.Z, "", "APPROX POSITION XYZ")
	fmt.Fprintf(w, "%14.4f%14.4f%14.4f%18s%s\n", hdr.AntennaDelta.Up, hdr.AntennaDelta.E, hdr.AntennaDelta.N, "", "ANTENNA: DELTA H/E/N")

	hdr.writeObsCodes(w)

	if hdr.SignalStrengthUnit != "" {
		fmt.Fprintf(w, "%-20s%40s%s\n", hdr.SignalStrengthUnit, "", "SIGNAL STRENGTH UNIT")
	}

	if hdr.Interval != 0 {
		fmt.Fprintf(w, "%10.3f%50s%s\n", hdr.Interval, "", "INTERVAL")
	}

	fmt.Fprintf(w, "%s%5s%-3s%9s%s\n", hdr.formatFirstObsTime(hdr.TimeOfFirstObs), "", hdr.timeSystemAbbr(), "", "TIME OF FIRST OBS")
	fmt.Fprintf(w, "%s%5s%-3s%9s%s\n", hdr.formatFirstObsTime(hdr.TimeOfLastObs), "", hdr.timeSystemAbbr(), "", "TIME OF LAST OBS")

	hdr.writeGloSlotsAndFreqs(w)

	if hdr.LeapSeconds != 0 {
		fmt.Fprintf(w, "%6d%54s%s\n", hdr.LeapSeconds, "", "LEAP SECONDS")
	}

	if hdr.NSatellites != 0 {
		fmt.Fprintf(w, "%6d%54s%s\n", hdr.NSatellites, "", "# OF SATELLITES")
	}

	fmt.Fprintf(w, "%60s%s\n", "", "END OF HEADER")

	return nil
}

// formatFirstObsTime renders t in the 43-column TIME OF FIRST/LAST OBS layout.
func (hdr *ObsHeader) formatFirstObsTime(t time.Time) string {
	sec := float64(t.Second()) + float64(t.Nanosecond())/1e9
	return fmt.Sprintf("%6d%6d%6d%6d%6d%13.7f", t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), sec)
}

// timeSystemAbbr returns the time system abbreviation used in the
// TIME OF FIRST/LAST OBS records. GPS is the default for mixed or unknown systems.
func (hdr *ObsHeader) timeSystemAbbr() string {
	switch hdr.SatSystem {
	case gnss.SysGLO:
		return "GLO"
	case gnss.SysGAL:
		return "GAL"
	case gnss.SysBDS:
		return "BDT"
	case gnss.SysQZSS:
		return "QZS"
	case gnss.SysNavIC:
		return "IRN"
	default:
		return "GPS"
	}
}

// writeObsCodes writes the SYS / # / OBS TYPES records, up to 13 codes per line.
func (hdr *ObsHeader) writeObsCodes(w io.Writer) {
	syss := make([]gnss.System, 0, len(hdr.ObsTypes))
	for sys := range hdr.ObsTypes {
		syss = append(syss, sys)
	}
	sort.Slice(syss, func(i, j int) bool { return syss[i] < syss[j] })

	for _, sys := range syss {
		codes := hdr.ObsTypes[sys]
		for i := 0; i < len(codes); i += 13 {
			end := i + 13
			if end > len(codes) {
				end = len(codes)
			}

			var b strings.Builder
			if i == 0 {
				fmt.Fprintf(&b, "%1s%5d ", sys.Abbr(), len(codes))
			} else {
				b.WriteString("       ")
			}
			for _, c := range codes[i:end] {
				fmt.Fprintf(&b, "%-4s", string(c))
			}

			fmt.Fprintf(w, "%-60s%s\n", b.String(), "SYS / # / OBS TYPES")
		}
	}
}

// writeGloSlotsAndFreqs writes the GLONASS SLOT / FRQ # records, up to 8 slots per line.
func (hdr *ObsHeader) writeGloSlotsAndFreqs(w io.Writer) {
	if len(hdr.GloSlots) == 0 {
		return
	}

	prns := make([]gnss.PRN, 0, len(hdr.GloSlots))
	for prn := range hdr.GloSlots {
		prns = append(prns, prn)
	}
	sort.Sort(gnss.ByPRN(prns))

	for i := 0; i < len(prns); i += 8 {
		end := i + 8
		if end > len(prns) {
			end = len(prns)
		}

		var b strings.Builder
		if i == 0 {
			fmt.Fprintf(&b, "%3d ", len(prns))
		} else {
			b.WriteString("    ")
		}
		for _, prn := range prns[i:end] {
			fmt.Fprintf(&b, "%s%3d ", prn.String(), hdr.GloSlots[prn])
		}

		fmt.Fprintf(w, "%-60s%s\n", b.String(), "GLONASS SLOT / FRQ #")
	}
}

// WriteEpoch writes one RINEX 3/4 epoch record to w: the epoch line
// followed by one observation line per satellite, the satellite's
// observables in the order given by hdr.ObsTypes for that satellite's
// system. A satellite carrying no value for a code gets 16 blank columns
// (the width of one code/LLI/SSI field), mirroring decodeObs's layout.
func WriteEpoch(w io.Writer, hdr *ObsHeader, epo *Epoch) error {
	sec := float64(epo.Time.Second()) + float64(epo.Time.Nanosecond())/1e9
	if _, err := fmt.Fprintf(w, "> %4d %02d %02d %02d %02d%11.7f  %1d%3d\n",
		epo.Time.Year(), int(epo.Time.Month()), epo.Time.Day(),
		epo.Time.Hour(), epo.Time.Minute(), sec, epo.Flag, epo.NumSat); err != nil {
		return err
	}

	sats := make([]SatObs, len(epo.ObsList))
	copy(sats, epo.ObsList)
	sort.Slice(sats, func(i, j int) bool {
		return sats[i].Prn.String() < sats[j].Prn.String()
	})

	for _, so := range sats {
		var b strings.Builder
		b.WriteString(so.Prn.String())
		for _, code := range hdr.ObsTypes[so.Prn.Sys] {
			obs, ok := so.Obss[code]
			if !ok {
				b.WriteString(strings.Repeat(" ", 16))
				continue
			}
			b.WriteString(encodeObs(obs))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(b.String(), " ")); err != nil {
			return err
		}
	}
	return nil
}

// encodeObs renders one observation as the 16-column value/LLI/SSI field
// decodeObs parses: a 14.3f value followed by single-digit LLI and SNR,
// blank where zero.
func encodeObs(o Obs) string {
	lli := " "
	if o.LLI != 0 {
		lli = strconv.Itoa(int(o.LLI))
	}
	snr := " "
	if o.SNR != 0 {
		snr = strconv.Itoa(int(o.SNR))
	}
	return fmt.Sprintf("%14.3f%s%s", o.Val, lli, snr)
}

// WriteObsFile writes a complete RINEX 3/4 observation file to w: the
// header, then one epoch record per entry in epochs, in the order given.
func WriteObsFile(w io.Writer, hdr *ObsHeader, epochs []*Epoch) error {
	if err := hdr.Write(w); err != nil {
		return err
	}
	for _, epo := range epochs {
		if err := WriteEpoch(w, hdr, epo); err != nil {
			return err
		}
	}
	return nil
}
