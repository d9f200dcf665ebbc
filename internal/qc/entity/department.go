package entity

import "fmt"

// Department is a stage of the trial route.
type Department struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

// Department ids, in route order. DepartmentClosed is sent as the next
// department once the last stage approves.
const (
	DepartmentClosed      = 0
	DepartmentMethods     = 1
	DepartmentSandPlant   = 2
	DepartmentMoulding    = 3
	DepartmentMelting     = 4
	DepartmentFettling    = 5
	DepartmentMetallurgy  = 6
	DepartmentQuality     = 7
	DepartmentMachineShop = 8
)

// Route is the fixed department order a trial moves through.
var Route = []Department{
	{ID: DepartmentMethods, Code: "methods", Name: "Methods"},
	{ID: DepartmentSandPlant, Code: "sand_plant", Name: "Sand Plant"},
	{ID: DepartmentMoulding, Code: "moulding", Name: "Moulding"},
	{ID: DepartmentMelting, Code: "melting", Name: "Melting"},
	{ID: DepartmentFettling, Code: "fettling", Name: "Fettling & Visual"},
	{ID: DepartmentMetallurgy, Code: "metallurgy", Name: "Metallurgy Lab"},
	{ID: DepartmentQuality, Code: "quality", Name: "Quality / Dimensional"},
	{ID: DepartmentMachineShop, Code: "machine_shop", Name: "Machine Shop"},
}

// DepartmentName returns the display name of a department id.
func DepartmentName(id int) string {
	for _, d := range Route {
		if d.ID == id {
			return d.Name
		}
	}
	if id == DepartmentClosed {
		return "Closed"
	}
	return fmt.Sprintf("Department %d", id)
}

// FormKind identifies an inspection screen.
type FormKind string

const (
	KindSampleCard         FormKind = "sample_card"
	KindSand               FormKind = "sand"
	KindMoulding           FormKind = "moulding"
	KindMaterialCorrection FormKind = "material_correction"
	KindPouring            FormKind = "pouring"
	KindVisual             FormKind = "visual"
	KindMetallurgical      FormKind = "metallurgical"
	KindDimensional        FormKind = "dimensional"
	KindMachineShop        FormKind = "machine_shop"
)

// FormKinds in route order.
var FormKinds = []FormKind{
	KindSampleCard, KindSand, KindMoulding, KindMaterialCorrection, KindPouring,
	KindVisual, KindMetallurgical, KindDimensional, KindMachineShop,
}

var kindDepartment = map[FormKind]int{
	KindSampleCard:         DepartmentMethods,
	KindSand:               DepartmentSandPlant,
	KindMoulding:           DepartmentMoulding,
	KindMaterialCorrection: DepartmentMelting,
	KindPouring:            DepartmentMelting,
	KindVisual:             DepartmentFettling,
	KindMetallurgical:      DepartmentMetallurgy,
	KindDimensional:        DepartmentQuality,
	KindMachineShop:        DepartmentMachineShop,
}

var kindTitle = map[FormKind]string{
	KindSampleCard:         "Foundry Sample Card",
	KindSand:               "Sand Plant Inspection",
	KindMoulding:           "Moulding Inspection",
	KindMaterialCorrection: "Material Correction",
	KindPouring:            "Pouring Details",
	KindVisual:             "Visual Inspection",
	KindMetallurgical:      "Metallurgical Inspection",
	KindDimensional:        "Dimensional Inspection",
	KindMachineShop:        "Machine Shop Inspection",
}

// ParseFormKind validates a kind taken from a URL.
func ParseFormKind(s string) (FormKind, bool) {
	k := FormKind(s)
	_, ok := kindDepartment[k]
	return k, ok
}

// Department the form belongs to.
func (k FormKind) Department() int {
	return kindDepartment[k]
}

// Title is the heading used on previews and printouts.
func (k FormKind) Title() string {
	if t, ok := kindTitle[k]; ok {
		return t
	}
	return string(k)
}
