// Package category maps raw detector class names to display metadata.
// The table is built once at process start and never mutated.
package category

// Raw class names emitted by the site-layout detector vocabulary.
const (
	ClassTowerCrane        = "tower_crane"
	ClassCrane             = "crane"
	ClassExcavator         = "excavator"
	ClassMixer             = "mixer"
	ClassDormitory         = "dormitory"
	ClassOffice            = "office"
	ClassToilet            = "toilet"
	ClassRebarYard         = "rebar_yard"
	ClassStaircase         = "staircase"
	ClassGate              = "gate"
	ClassRedLine           = "red_line"
	ClassRoad              = "road"
	ClassMainBuilding      = "main_building"
	ClassMaterialYard      = "material_yard"
	ClassHazmatYard        = "hazmat_yard"
	ClassCarWash           = "car_wash"
	ClassSedimentationTank = "sedimentation_tank"
)

// Category group labels.
const (
	GroupVerticalTransport = "Vertical Transport Machinery"
	GroupMachinery         = "Construction Machinery"
	GroupLivingOffice      = "Temporary Facilities - Living & Office"
	GroupProduction        = "Temporary Facilities - Production"
	GroupAuxiliary         = "Temporary Facilities - Auxiliary"
	GroupInfrastructure    = "Infrastructure"
	GroupStorage           = "Material Storage"
	GroupOther             = "Other"
)

// Entry describes how one raw class is presented and grouped.
type Entry struct {
	DisplayName string `json:"display_name"`
	Group       string `json:"group"`
	Color       string `json:"color"`
}

// defaultEntry is returned for classes outside the known vocabulary.
// Unknown classes pass through rather than being dropped.
var defaultEntry = Entry{Group: GroupOther, Color: "#666666"}

var entries = map[string]Entry{
	ClassTowerCrane: {DisplayName: "Tower Crane", Group: GroupVerticalTransport, Color: "#FF4D4F"},

	ClassCrane:     {DisplayName: "Mobile Crane", Group: GroupMachinery, Color: "#FFA940"},
	ClassExcavator: {DisplayName: "Excavator", Group: GroupMachinery, Color: "#FFA940"},
	ClassMixer:     {DisplayName: "Concrete Mixer", Group: GroupMachinery, Color: "#FFA940"},

	ClassDormitory: {DisplayName: "Dormitory", Group: GroupLivingOffice, Color: "#73D13D"},
	ClassOffice:    {DisplayName: "Office", Group: GroupLivingOffice, Color: "#73D13D"},
	ClassToilet:    {DisplayName: "Toilet", Group: GroupLivingOffice, Color: "#73D13D"},

	ClassRebarYard: {DisplayName: "Rebar Processing Yard", Group: GroupProduction, Color: "#40A9FF"},

	ClassStaircase: {DisplayName: "Staircase", Group: GroupAuxiliary, Color: "#9254DE"},

	ClassGate:         {DisplayName: "Gate", Group: GroupInfrastructure, Color: "#36CFC9"},
	ClassRedLine:      {DisplayName: "Site Red Line", Group: GroupInfrastructure, Color: "#36CFC9"},
	ClassRoad:         {DisplayName: "Road", Group: GroupInfrastructure, Color: "#36CFC9"},
	ClassMainBuilding: {DisplayName: "Main Building", Group: GroupInfrastructure, Color: "#597EF7"},

	ClassMaterialYard:      {DisplayName: "Material Yard", Group: GroupStorage, Color: "#D4B106"},
	ClassHazmatYard:        {DisplayName: "Hazardous Material Yard", Group: GroupStorage, Color: "#CF1322"},
	ClassCarWash:           {DisplayName: "Car Wash Station", Group: GroupInfrastructure, Color: "#13C2C2"},
	ClassSedimentationTank: {DisplayName: "Sedimentation Tank", Group: GroupInfrastructure, Color: "#13C2C2"},
}

// Lookup returns the entry for a raw class name. Unknown classes resolve
// to a copy of the default entry with the raw name as display name.
func Lookup(class string) Entry {
	if e, ok := entries[class]; ok {
		return e
	}
	e := defaultEntry
	e.DisplayName = class
	return e
}

// Known reports whether the class is part of the detector vocabulary.
func Known(class string) bool {
	_, ok := entries[class]
	return ok
}

// Classes returns the known raw class names. The slice is fresh on every
// call so callers cannot mutate the table through it.
func Classes() []string {
	out := make([]string, 0, len(entries))
	for name := range entries {
		out = append(out, name)
	}
	return out
}
