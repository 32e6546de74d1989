package domain

import "fmt"

// Lookup table names used in KeyNotFoundError.
const (
	TableParameter = "parameter"
	TablePeriod    = "period"
	TableRegion    = "region"
)

// KeyNotFoundError reports a coded filename token that has no entry in a lookup table.
type KeyNotFoundError struct {
	Table string
	Key   string
}

func (e *KeyNotFoundError) Error() string {
	return fmt.Sprintf("unknown %s code %q", e.Table, e.Key)
}

// Lookups maps coded filename tokens to human-readable names. A Lookups value is
// built once per run and only read afterwards.
type Lookups struct {
	Parameters map[string]string
	Periods    map[string]string
	Regions    map[string]string
}

// DefaultLookups returns the NIWA climatology tables for 1991-2020 normals.
func DefaultLookups() Lookups {
	return Lookups{
		Parameters: map[string]string{
			"00": "Total-Rainfall",
			"01": "Wet-Days-GT-1mm",
			"02": "Mean-Air-Temperature",
			"03": "Mean-Daily-Maximum-Air-Temperature",
			"04": "Mean-Daily-Minimum-Air-Temperature",
			"09": "Total-Sunshine",
			"11": "Mean-Earth-Temperature-At-10cm",
			"17": "Mean-Daily-Global-Irradiance",
			"23": "Screen-Frost-Days",
			"33": "Mean-Daily-Wind-Speed-At-10m",
			"34": "Total-Penman-PET",
			"37": "Total-Growing-Degree-Days-GDD-base-5degC",
			"38": "Total-Growing-Degree-Days-GDD-base-10degC",
			"64": "Mean-9AM-RH",
			"68": "Total-Heating-Degree-Days-HDD-base-18degC",
			"74": "Days-Of-Soil-Moisture-Deficit",
		},
		Periods: map[string]string{
			"monthly1":  "January",
			"monthly2":  "February",
			"monthly3":  "March",
			"monthly4":  "April",
			"monthly5":  "May",
			"monthly6":  "June",
			"monthly7":  "July",
			"monthly8":  "August",
			"monthly9":  "September",
			"monthly10": "October",
			"monthly11": "November",
			"monthly12": "December",
			"seasonal1": "Summer",
			"seasonal2": "Autumn",
			"seasonal3": "Winter",
			"seasonal4": "Spring",
			"annual":    "Annual",
		},
		Regions: map[string]string{
			"01": "Northland",
			"02": "Auckland",
			"03": "Waikato",
			"04": "Bay-Of-Plenty",
			"05": "Gisborne",
			"06": "Hawkes-Bay",
			"07": "Taranaki",
			"08": "Manawatu-Whanganui",
			"09": "Wellington",
			"12": "West-Coast",
			"13": "Canterbury",
			"14": "Otago",
			"15": "Southland",
			"16": "Tasman",
			"17": "Nelson",
			"18": "Marlborough",
			"99": "Chatham-Islands",
		},
	}
}

// Parameter returns the parameter name for a two-digit parameter code.
func (l Lookups) Parameter(code string) (string, error) {
	return lookup(l.Parameters, TableParameter, code)
}

// Period returns the month or season name for a period token such as "monthly3".
func (l Lookups) Period(token string) (string, error) {
	return lookup(l.Periods, TablePeriod, token)
}

// Region returns the file-name form of a region code, e.g. "13" -> "Canterbury".
func (l Lookups) Region(code string) (string, error) {
	return lookup(l.Regions, TableRegion, code)
}

func lookup(table map[string]string, name, key string) (string, error) {
	v, ok := table[key]
	if !ok {
		return "", &KeyNotFoundError{Table: name, Key: key}
	}
	return v, nil
}
