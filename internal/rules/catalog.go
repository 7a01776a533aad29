package rules

import (
	"fmt"

	"github.com/Cain-James/yolov11/internal/category"
	"github.com/Cain-James/yolov11/internal/detect"
	"github.com/Cain-James/yolov11/internal/geometry"
)

// Thresholds holds the tunable geometry parameters of the catalogue. The
// defaults mirror the original heuristics and are not calibrated against
// real drawings; deployments set them per drawing scale.
type Thresholds struct {
	// NearPx is the "adjacent to" tolerance for proximity and
	// connectivity rules.
	NearPx float64
	// IsolationPx is the minimum separation for the hazardous material
	// isolation rule.
	IsolationPx float64
	// CoverageScale multiplies a crane box width into its operational
	// radius.
	CoverageScale float64
	// PixelsPerMeter converts pixel distances into meters.
	PixelsPerMeter float64
	// MinCraneSpacingM is the minimum distance between two tower cranes.
	MinCraneSpacingM float64
	// MinRoadWidthM is the minimum main road width.
	MinRoadWidthM float64
}

// DefaultThresholds returns the conventional values.
func DefaultThresholds() Thresholds {
	return Thresholds{
		NearPx:           50,
		IsolationPx:      100,
		CoverageScale:    5,
		PixelsPerMeter:   0.1,
		MinCraneSpacingM: 2,
		MinRoadWidthM:    6,
	}
}

// Catalog builds the site-layout rule catalogue. The returned slice is
// the single source of truth for rule registration; each predicate is
// also usable on its own in tests.
func Catalog(t Thresholds) []Rule {
	return []Rule{
		{
			ID:          "1.5.4-1",
			Category:    "Processing Yards",
			Description: "A rebar processing yard must be provided",
			Severity:    SeverityImportant,
			Check:       CheckRebarYardExists,
		},
		{
			ID:          "1.5.4-2",
			Category:    "Processing Yards",
			Description: "The rebar processing yard must adjoin a construction road",
			Severity:    SeverityImportant,
			Check:       CheckRebarYardNearRoad(t.NearPx),
		},
		{
			ID:          "1.5.1-1",
			Category:    "Tower Crane",
			Description: "Tower cranes must cover the rebar processing yards",
			Severity:    SeverityImportant,
			Check:       CheckCraneCoversRebarYards(t.CoverageScale),
		},
		{
			ID:          "1.5.1-2",
			Category:    "Tower Crane",
			Description: "Tower cranes must fully cover the main building",
			Severity:    SeverityCritical,
			Check:       CheckCraneCoversMainBuilding(t.CoverageScale),
		},
		{
			ID:          "1.5.1-3",
			Category:    "Tower Crane",
			Description: "Tower cranes must keep the minimum spacing between each other",
			Severity:    SeverityImportant,
			Check:       CheckCraneSpacing(t.PixelsPerMeter, t.MinCraneSpacingM),
		},
		{
			ID:          "1.5.8-1",
			Category:    "Gates",
			Description: "Gates must open directly onto a main construction road",
			Severity:    SeverityImportant,
			Check:       CheckGateConnectsRoad,
		},
		{
			ID:          "1.5.8-2",
			Category:    "Gates",
			Description: "At least one gate must be provided",
			Severity:    SeverityImportant,
			Check:       CheckGateExists,
		},
		{
			ID:          "1.5.7-1",
			Category:    "Roads",
			Description: "A construction road must connect the personnel staircase with a gate",
			Severity:    SeverityImportant,
			Check:       CheckRoadConnectsGateAndStaircase(t.NearPx),
		},
		{
			ID:          "1.5.7-2",
			Category:    "Roads",
			Description: "Main roads must meet the minimum width",
			Severity:    SeverityNormal,
			Check:       CheckRoadWidth(t.PixelsPerMeter, t.MinRoadWidthM),
		},
		{
			ID:          "1.10.8-6",
			Category:    "Fire Safety",
			Description: "A temporary fire lane must be provided on site",
			Severity:    SeverityCritical,
			Check:       CheckFireLaneExists,
		},
		{
			ID:          "1.10.8-7",
			Category:    "Fire Safety",
			Description: "A car wash station with a three-stage sedimentation tank must be provided at the gate",
			Severity:    SeverityImportant,
			Check:       CheckCarWashExists,
		},
		{
			ID:          "1.10.1-1",
			Category:    "Site Layout",
			Description: "All buildings and facilities must sit inside the site red line",
			Severity:    SeverityCritical,
			Check:       CheckWithinRedLine,
		},
		{
			ID:          "1.7.3-1",
			Category:    "Material Yards",
			Description: "Material yards must adjoin a construction road",
			Severity:    SeverityNormal,
			Check:       CheckMaterialYardsNearRoad(t.NearPx),
		},
		{
			ID:          "1.7.3-2",
			Category:    "Material Yards",
			Description: "Hazardous material yards must be kept apart from other areas",
			Severity:    SeverityCritical,
			Check:       CheckHazmatIsolation(t.IsolationPx),
		},
	}
}

// byClass filters detections down to one raw class.
func byClass(dets []detect.Detection, class string) []detect.Detection {
	var out []detect.Detection
	for _, d := range dets {
		if d.Class == class {
			out = append(out, d)
		}
	}
	return out
}

// CheckRebarYardExists is an existence rule: zero rebar yards is a
// determinate non-compliance, not an undetectable case.
func CheckRebarYardExists(dets []detect.Detection) Outcome {
	yards := byClass(dets, category.ClassRebarYard)
	if len(yards) == 0 {
		return Outcome{StatusNonCompliant, "no rebar processing yard detected"}
	}
	return Outcome{StatusCompliant, fmt.Sprintf("%d rebar processing yard(s) provided", len(yards))}
}

// CheckRebarYardNearRoad passes when any rebar yard lies within nearPx of
// a road.
func CheckRebarYardNearRoad(nearPx float64) Predicate {
	return func(dets []detect.Detection) Outcome {
		yards := byClass(dets, category.ClassRebarYard)
		roads := byClass(dets, category.ClassRoad)
		if len(yards) == 0 || len(roads) == 0 {
			return Outcome{StatusUndetectable, "rebar yard and road not both detected"}
		}
		for _, y := range yards {
			c := geometry.Centroid(y.Box)
			for _, r := range roads {
				if geometry.PointRectDistance(c, r.Box) <= nearPx {
					return Outcome{StatusCompliant, "rebar processing yard adjoins a construction road"}
				}
			}
		}
		return Outcome{StatusNonCompliant, "no rebar processing yard adjoins a construction road"}
	}
}

// CheckCraneCoversRebarYards requires every rebar yard centroid within
// the coverage radius of at least one tower crane.
func CheckCraneCoversRebarYards(scale float64) Predicate {
	return func(dets []detect.Detection) Outcome {
		cranes := byClass(dets, category.ClassTowerCrane)
		yards := byClass(dets, category.ClassRebarYard)
		if len(cranes) == 0 || len(yards) == 0 {
			return Outcome{StatusUndetectable, "tower crane and rebar yard not both detected"}
		}
		for _, y := range yards {
			if !coveredByAny(y.Box, cranes, scale) {
				return Outcome{StatusNonCompliant, "a rebar processing yard lies outside tower crane coverage"}
			}
		}
		return Outcome{StatusCompliant, "tower cranes cover all rebar processing yards"}
	}
}

// coveredByAny reports whether the target centroid falls inside the
// coverage radius of any crane.
func coveredByAny(target geometry.Box, cranes []detect.Detection, scale float64) bool {
	c := geometry.Centroid(target)
	for _, crane := range cranes {
		radius := geometry.CoverageRadius(crane.Box, scale)
		if geometry.Distance(geometry.Centroid(crane.Box), c) <= radius {
			return true
		}
	}
	return false
}

// CheckCraneCoversMainBuilding requires, for each main building, one
// crane whose radius reaches all four building corners.
func CheckCraneCoversMainBuilding(scale float64) Predicate {
	return func(dets []detect.Detection) Outcome {
		cranes := byClass(dets, category.ClassTowerCrane)
		buildings := byClass(dets, category.ClassMainBuilding)
		if len(cranes) == 0 || len(buildings) == 0 {
			return Outcome{StatusUndetectable, "tower crane and main building not both detected"}
		}
		for _, b := range buildings {
			if !fullyCoveredByAny(b.Box, cranes, scale) {
				return Outcome{StatusNonCompliant, "the main building is not fully covered by a tower crane"}
			}
		}
		return Outcome{StatusCompliant, "tower cranes fully cover the main building"}
	}
}

func fullyCoveredByAny(target geometry.Box, cranes []detect.Detection, scale float64) bool {
	corners := geometry.Corners(target)
	for _, crane := range cranes {
		center := geometry.Centroid(crane.Box)
		radius := geometry.CoverageRadius(crane.Box, scale)
		all := true
		for _, corner := range corners {
			if geometry.Distance(center, corner) > radius {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

// CheckCraneSpacing verifies pairwise tower-crane separation against the
// minimum real-world spacing.
func CheckCraneSpacing(pxPerMeter, minMeters float64) Predicate {
	return func(dets []detect.Detection) Outcome {
		cranes := byClass(dets, category.ClassTowerCrane)
		if len(cranes) < 2 {
			return Outcome{StatusUndetectable, "fewer than two tower cranes detected"}
		}
		for i := 0; i < len(cranes); i++ {
			for j := i + 1; j < len(cranes); j++ {
				px := geometry.Distance(geometry.Centroid(cranes[i].Box), geometry.Centroid(cranes[j].Box))
				m := geometry.PixelsToMeters(px, pxPerMeter)
				if m < minMeters {
					return Outcome{StatusNonCompliant,
						fmt.Sprintf("tower crane spacing %.2fm is below the %.0fm minimum", m, minMeters)}
				}
			}
		}
		return Outcome{StatusCompliant, "tower crane spacing meets the minimum"}
	}
}

// CheckGateConnectsRoad passes when some gate centroid falls inside a
// road box expanded by the gate's own dimensions.
func CheckGateConnectsRoad(dets []detect.Detection) Outcome {
	gates := byClass(dets, category.ClassGate)
	roads := byClass(dets, category.ClassRoad)
	if len(gates) == 0 || len(roads) == 0 {
		return Outcome{StatusUndetectable, "gate and road not both detected"}
	}
	for _, g := range gates {
		c := geometry.Centroid(g.Box)
		dx := int(g.Box.Width())
		dy := int(g.Box.Height())
		for _, r := range roads {
			if geometry.PointInRect(c, geometry.Expand(r.Box, dx, dy)) {
				return Outcome{StatusCompliant, "a gate opens directly onto a construction road"}
			}
		}
	}
	return Outcome{StatusNonCompliant, "no gate opens directly onto a construction road"}
}

// CheckGateExists is an existence rule over gates.
func CheckGateExists(dets []detect.Detection) Outcome {
	gates := byClass(dets, category.ClassGate)
	if len(gates) == 0 {
		return Outcome{StatusNonCompliant, "no gate detected on site"}
	}
	return Outcome{StatusCompliant, fmt.Sprintf("%d gate(s) provided", len(gates))}
}

// CheckRoadConnectsGateAndStaircase requires a single road within nearPx
// of both a gate and a staircase.
func CheckRoadConnectsGateAndStaircase(nearPx float64) Predicate {
	return func(dets []detect.Detection) Outcome {
		roads := byClass(dets, category.ClassRoad)
		gates := byClass(dets, category.ClassGate)
		stairs := byClass(dets, category.ClassStaircase)
		if len(roads) == 0 || len(gates) == 0 {
			return Outcome{StatusUndetectable, "road and gate not both detected"}
		}
		if len(stairs) == 0 {
			return Outcome{StatusUndetectable, "no personnel staircase detected"}
		}
		for _, r := range roads {
			if nearAnyCentroid(r.Box, gates, nearPx) && nearAnyCentroid(r.Box, stairs, nearPx) {
				return Outcome{StatusCompliant, "a construction road connects the staircase with a gate"}
			}
		}
		return Outcome{StatusNonCompliant, "no single road connects the staircase with a gate"}
	}
}

func nearAnyCentroid(road geometry.Box, dets []detect.Detection, nearPx float64) bool {
	for _, d := range dets {
		if geometry.PointRectDistance(geometry.Centroid(d.Box), road) <= nearPx {
			return true
		}
	}
	return false
}

// CheckRoadWidth converts each road's narrow dimension to meters and
// compares it against the minimum.
func CheckRoadWidth(pxPerMeter, minMeters float64) Predicate {
	return func(dets []detect.Detection) Outcome {
		roads := byClass(dets, category.ClassRoad)
		if len(roads) == 0 {
			return Outcome{StatusUndetectable, "no road detected"}
		}
		for _, r := range roads {
			narrow := r.Box.Width()
			if h := r.Box.Height(); h < narrow {
				narrow = h
			}
			m := geometry.PixelsToMeters(narrow, pxPerMeter)
			if m < minMeters {
				return Outcome{StatusNonCompliant,
					fmt.Sprintf("road width %.2fm is below the %.0fm minimum", m, minMeters)}
			}
		}
		return Outcome{StatusCompliant, "road widths meet the minimum"}
	}
}

// CheckFireLaneExists treats any detected road as a usable temporary fire
// lane; dedicated fire lane markings are not in the detector vocabulary.
func CheckFireLaneExists(dets []detect.Detection) Outcome {
	roads := byClass(dets, category.ClassRoad)
	if len(roads) == 0 {
		return Outcome{StatusNonCompliant, "no temporary fire lane provided"}
	}
	return Outcome{StatusCompliant, "a temporary fire lane is provided"}
}

// CheckCarWashExists requires both a car wash station and a
// sedimentation tank.
func CheckCarWashExists(dets []detect.Detection) Outcome {
	washes := byClass(dets, category.ClassCarWash)
	tanks := byClass(dets, category.ClassSedimentationTank)
	if len(washes) == 0 {
		return Outcome{StatusNonCompliant, "no car wash station provided"}
	}
	if len(tanks) == 0 {
		return Outcome{StatusNonCompliant, "no three-stage sedimentation tank provided"}
	}
	return Outcome{StatusCompliant,
		fmt.Sprintf("%d car wash station(s) and %d sedimentation tank(s) provided", len(washes), len(tanks))}
}

// CheckWithinRedLine requires every other object's centroid inside the
// red-line box. Reports the first violating object only.
func CheckWithinRedLine(dets []detect.Detection) Outcome {
	redLines := byClass(dets, category.ClassRedLine)
	if len(redLines) == 0 {
		return Outcome{StatusUndetectable, "site red line not detected"}
	}
	boundary := redLines[0].Box
	for _, d := range dets {
		if d.Class == category.ClassRedLine {
			continue
		}
		if !geometry.PointInRect(geometry.Centroid(d.Box), boundary) {
			return Outcome{StatusNonCompliant,
				fmt.Sprintf("%s lies outside the site red line", displayName(d))}
		}
	}
	return Outcome{StatusCompliant, "all buildings and facilities sit inside the site red line"}
}

// CheckMaterialYardsNearRoad requires every material yard within nearPx
// of some road.
func CheckMaterialYardsNearRoad(nearPx float64) Predicate {
	return func(dets []detect.Detection) Outcome {
		yards := byClass(dets, category.ClassMaterialYard)
		roads := byClass(dets, category.ClassRoad)
		if len(yards) == 0 || len(roads) == 0 {
			return Outcome{StatusUndetectable, "material yard and road not both detected"}
		}
		for _, y := range yards {
			c := geometry.Centroid(y.Box)
			near := false
			for _, r := range roads {
				if geometry.PointRectDistance(c, r.Box) <= nearPx {
					near = true
					break
				}
			}
			if !near {
				return Outcome{StatusNonCompliant, "a material yard does not adjoin a construction road"}
			}
		}
		return Outcome{StatusCompliant, "all material yards adjoin a construction road"}
	}
}

// hazmatNeighborClasses are the areas a hazardous yard must keep the
// isolation distance from.
var hazmatNeighborClasses = []string{
	category.ClassMaterialYard,
	category.ClassRebarYard,
	category.ClassOffice,
	category.ClassDormitory,
}

// CheckHazmatIsolation fails on the first hazardous yard closer than
// isolationPx to a protected area, naming the conflicting category. No
// hazardous yard on site is vacuously compliant.
func CheckHazmatIsolation(isolationPx float64) Predicate {
	return func(dets []detect.Detection) Outcome {
		hazmat := byClass(dets, category.ClassHazmatYard)
		if len(hazmat) == 0 {
			return Outcome{StatusCompliant, "no hazardous material yard on site"}
		}
		for _, h := range hazmat {
			for _, class := range hazmatNeighborClasses {
				for _, other := range byClass(dets, class) {
					if geometry.RectDistance(h.Box, other.Box) < isolationPx {
						return Outcome{StatusNonCompliant,
							fmt.Sprintf("hazardous material yard is too close to %s", displayName(other))}
					}
				}
			}
		}
		return Outcome{StatusCompliant, "hazardous material yards keep the required separation"}
	}
}

func displayName(d detect.Detection) string {
	if d.DisplayName != "" {
		return d.DisplayName
	}
	return d.Class
}
