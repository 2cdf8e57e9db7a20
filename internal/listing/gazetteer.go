package listing

// CapitalCity is the location used when nothing in a fragment names a place.
const CapitalCity = "الرياض"

var saudiCities = []string{
	"الرياض", "جدة", "مكة المكرمة", "المدينة المنورة", "الدمام",
	"الخبر", "الظهران", "الطائف", "بريدة", "عنيزة", "حائل",
	"تبوك", "أبها", "خميس مشيط", "نجران", "جازان", "الجبيل", "الهفوف",
}

type cityDistricts struct {
	city      string
	districts []string
}

// Scanned in declaration order; a district name shared by two cities
// resolves to the first one listed.
var saudiDistricts = []cityDistricts{
	{city: "الرياض", districts: []string{
		"حي الملقا", "حي حطين", "حي الياسمين", "حي النرجس", "حي الصحافة",
		"حي العقيق", "حي القيروان", "حي الرمال", "حي النفل", "حي الغدير",
		"حي العليا", "حي السليمانية", "حي المعذر", "حي لبن", "حي نمار",
	}},
	{city: "جدة", districts: []string{
		"حي الشاطئ", "حي الحمراء", "حي الروضة", "حي السلامة", "حي الزهراء",
		"حي النعيم", "حي المحمدية", "حي أبحر الشمالية", "حي البساتين", "حي المرجان",
	}},
	{city: "مكة المكرمة", districts: []string{
		"حي الشوقية", "حي بطحاء قريش", "حي العوالي", "حي النسيم", "حي الزايدي",
		"حي ولي العهد", "حي الكعكية",
	}},
	{city: "الدمام", districts: []string{
		"حي الشاطئ", "حي الفيصلية", "حي المنار", "حي طيبة", "حي الفاخرية",
		"حي نزهة الخليج", "حي الندى",
	}},
	{city: "الخبر", districts: []string{
		"حي الحزام الأخضر", "حي الحزام الذهبي", "حي الراكة", "حي القصور", "حي التحلية",
	}},
}

// Districts returns the known districts of city, or nil.
func Districts(city string) []string {
	for _, cd := range saudiDistricts {
		if cd.city == city {
			return append([]string(nil), cd.districts...)
		}
	}
	return nil
}
