package listing

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dr-Musa/najah-realestate/internal/models"
)

func text(title, snippet string) fragmentText {
	return newFragmentText(models.RawFragment{Title: title, Snippet: snippet})
}

// ===== Source =====

func TestDetectSource(t *testing.T) {
	tests := map[string]models.Source{
		"https://sa.aqar.fm/ad/123":               models.SourceAqar,
		"https://haraj.com.sa/11223344":           models.SourceHaraj,
		"https://www.bayut.sa/property/details":   models.SourceBayut,
		"https://wasalt.com/en/property/7":        models.SourceWasalt,
		"https://sa.opensooq.com/ar/search/1":     models.SourceOpenSooq,
		"https://www.zaahib.com/listing/9":        models.SourceZaahib,
		"https://example-blog.net/aqar.fm-review": models.SourceOther,
		"not a url haraj.com":                     models.SourceHaraj,
		"":                                        models.SourceOther,
	}
	for uri, want := range tests {
		assert.Equal(t, want, detectSource(uri), uri)
	}
}

// ===== Phone =====

func TestExtractPhone(t *testing.T) {
	assert.Equal(t, "0512345678", extractPhone("للتواصل 0512345678 فقط"))
	assert.Equal(t, "966512345678", extractPhone("واتساب 966512345678"))
	assert.Equal(t, "+966512345678", extractPhone("+966512345678"))
	assert.Equal(t, "", extractPhone("0112345678"))
	assert.Equal(t, "", extractPhone("لا يوجد رقم"))
}

func TestReconcilePhone(t *testing.T) {
	phoneMode := PhoneMode("0512345678")

	tests := []struct {
		name      string
		extracted string
		source    models.Source
		mode      SearchMode
		wantPhone string
		wantKeep  bool
	}{
		{"general keeps extracted", "0599999999", models.SourceOther, GeneralMode(), "0599999999", true},
		{"general keeps empty", "", models.SourceOther, GeneralMode(), "", true},
		{"target matched", "0512345678", models.SourceOther, phoneMode, "0512345678", true},
		{"target inside international form", "+966512345678", models.SourceOther, PhoneMode("512345678"), "+966512345678", true},
		{"target adopted", "", models.SourceOther, phoneMode, "0512345678", true},
		{"mismatch dropped", "0598765432", models.SourceOther, phoneMode, "0598765432", false},
		{"mismatch kept on haraj", "0598765432", models.SourceHaraj, phoneMode, "0598765432", true},
		{"mismatch kept on aqar", "0598765432", models.SourceAqar, phoneMode, "0598765432", true},
		{"mismatch dropped on bayut", "0598765432", models.SourceBayut, phoneMode, "0598765432", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			phone, keep := reconcilePhone(tt.extracted, tt.source, tt.mode)
			assert.Equal(t, tt.wantKeep, keep)
			assert.Equal(t, tt.wantPhone, phone)
		})
	}
}

// ===== Owner =====

func TestExtractOwner(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		snippet string
		source  models.Source
		want    string
	}{
		{"company", "فيلا للبيع", "مكتب النخبة", models.SourceOther, "مكتب النخبة"},
		{"company capped at six tokens", "", "مجموعة ال ب ج د ه و ز", models.SourceOther, "مجموعة ال ب ج د ه"},
		{"company capped at forty characters", "", "شركة الأفق الذهبي للتطوير والاستثمار العقاري المحدودة", models.SourceOther, "شركة الأفق الذهبي للتطوير والاستثمار العقاري"},
		{"label", "شقة للإيجار", "المعلن: أبو فهد", models.SourceOther, "أبو فهد"},
		{"label too long", "", "المالك: " + "اسم طويل جدا لا يمكن ان يكون اسما حقيقيا ابدا", models.SourceOther, OwnerAdvertiser},
		{"company before label", "", "المالك: سعد مؤسسة الريان", models.SourceOther, "مؤسسة الريان"},
		{"haraj member", "أرض للبيع", "عضو 55512", models.SourceHaraj, "عضو حراج 55512"},
		{"member ignored off haraj", "أرض للبيع", "عضو 55512", models.SourceBayut, OwnerAdvertiser},
		{"haraj fallback", "أرض", "", models.SourceHaraj, OwnerHarajUser},
		{"aqar fallback", "أرض", "", models.SourceAqar, OwnerAqarBroker},
		{"other fallback", "أرض", "", models.SourceWasalt, OwnerAdvertiser},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractOwner(text(tt.title, tt.snippet), tt.source))
		})
	}
}

func TestIsGenericOwner(t *testing.T) {
	assert.True(t, IsGenericOwner(OwnerHarajUser))
	assert.True(t, IsGenericOwner(OwnerAqarBroker))
	assert.True(t, IsGenericOwner(OwnerAdvertiser))
	assert.False(t, IsGenericOwner("عضو حراج 55512"))
}

// ===== Price =====

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		snippet string
		want    string
		matched bool
	}{
		{"grouped", "", "السعر 1,500,000 ريال", "1,500,000 ريال", true},
		{"ungrouped", "", "السعر 1500000 ريال", "1500000 ريال", true},
		{"thousands word", "", "850 الف", "850 الف", true},
		{"latin unit any case", "", "price 3000 sr", "3000 sr", true},
		{"million", "", "2.5 مليون", "2.5 مليون", true},
		{"snippet before title", "100 ريال", "200 ريال", "200 ريال", true},
		{"title fallback", "فيلا 900 الف", "بدون سعر", "900 الف", true},
		{"placeholder", "فيلا", "تواصل", PricePlaceholder, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			price, matched := extractPrice(text(tt.title, tt.snippet))
			assert.Equal(t, tt.want, price)
			assert.Equal(t, tt.matched, matched)
		})
	}
}

// ===== Rooms & bathrooms =====

func TestExtractRooms(t *testing.T) {
	guesser := FixedRoomGuesser{Villa: 5, Other: 2}
	noIntent := ParsedIntent{Mode: GeneralMode()}
	withIntent := ParsedIntent{Mode: GeneralMode(), DesiredRooms: intPtr(7)}

	tests := []struct {
		name          string
		snippet       string
		intent        ParsedIntent
		want          string
		wantEstimated bool
	}{
		{"two rooms keyword", "شقة غرفتين وصالة 4 غرف", noIntent, "2", false},
		{"studio", "استوديو مفروش", noIntent, "1", false},
		{"single room", "غرفة واحدة ومطبخ", noIntent, "1", false},
		{"explicit count", "شقة 4 غرف نوم", noIntent, "4", false},
		{"master", "3 ماستر", noIntent, "3", false},
		{"desired rooms", "شقة مميزة", withIntent, "7", false},
		{"explicit beats desired", "شقة 3 غرف", withIntent, "3", false},
		{"villa guess", "فيلا مودرن", noIntent, "5", true},
		{"other guess", "أرض سكنية", noIntent, "2", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rooms, estimated := extractRooms(text("", tt.snippet), tt.intent, guesser)
			assert.Equal(t, tt.want, rooms)
			assert.Equal(t, tt.wantEstimated, estimated)
		})
	}
}

func TestRandomRoomGuesser(t *testing.T) {
	a := NewRandomRoomGuesser(42)
	b := NewRandomRoomGuesser(42)
	for i := 0; i < 50; i++ {
		villa := a.GuessRooms(true)
		assert.GreaterOrEqual(t, villa, 4)
		assert.LessOrEqual(t, villa, 6)
		assert.Equal(t, villa, b.GuessRooms(true))

		other := a.GuessRooms(false)
		assert.GreaterOrEqual(t, other, 2)
		assert.LessOrEqual(t, other, 3)
		assert.Equal(t, other, b.GuessRooms(false))
	}
}

func TestExtractBathrooms(t *testing.T) {
	assert.Equal(t, "3", extractBathrooms(text("", "3 حمام"), "5"))
	assert.Equal(t, "4", extractBathrooms(text("", ""), "5"))
	assert.Equal(t, "2", extractBathrooms(text("", ""), "3"))
	assert.Equal(t, "2", extractBathrooms(text("", ""), "—"))
	// Only the snippet is searched for an explicit count.
	assert.Equal(t, "2", extractBathrooms(text("5 حمام", ""), "1"))
}

// ===== Area =====

func TestExtractArea(t *testing.T) {
	tests := []struct {
		name    string
		title   string
		snippet string
		want    string
	}{
		{"square meters", "", "المساحة 300 م2 شارع 20", "300"},
		{"meter word", "", "مساحة 625 متر", "625"},
		{"bare meem at end", "", "450م", "450"},
		{"million is not area", "فيلا", "السعر 2 مليون", "350"},
		{"villa default", "فيلا للبيع", "", "350"},
		{"apartment default", "شقة للإيجار", "", "140"},
		{"other default", "أرض", "", "500"},
		{"title ignored for explicit", "400 متر", "", "500"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, extractArea(text(tt.title, tt.snippet)))
		})
	}
}

// ===== Location =====

func TestResolveLocation(t *testing.T) {
	tests := []struct {
		name         string
		text         string
		wantCity     string
		wantDistrict string
	}{
		{"city and district", "فيلا في حي الملقا بالرياض", "الرياض", "حي الملقا"},
		{"city only", "شقة في تبوك", "تبوك", ""},
		{"district of another city ignored", "جدة حي الملقا", "جدة", ""},
		{"district infers city", "شقة في حي الروضة", "جدة", "حي الروضة"},
		{"shared district resolves to first list", "حي الشاطئ", "جدة", "حي الشاطئ"},
		{"dammam district", "حي الفيصلية", "الدمام", "حي الفيصلية"},
		{"capital fallback", "لا يوجد موقع", CapitalCity, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			city, district := resolveLocation(tt.text)
			assert.Equal(t, tt.wantCity, city)
			assert.Equal(t, tt.wantDistrict, district)
		})
	}
}

func TestFormatLocation(t *testing.T) {
	assert.Equal(t, "الرياض، حي الملقا", formatLocation("الرياض", "حي الملقا"))
	assert.Equal(t, "الرياض", formatLocation("الرياض", ""))
}

func TestGazetteer(t *testing.T) {
	assert.Len(t, saudiCities, 18)
	assert.Equal(t, CapitalCity, saudiCities[0])

	assert.Len(t, Districts("الخبر"), 5)
	assert.Nil(t, Districts("تبوك"))
}

// ===== Image =====

func TestPickImage(t *testing.T) {
	assert.Equal(t, imageTable[0].url, pickImage(text("أرض للبيع", "")))
	assert.Equal(t, imageTable[1].url, pickImage(text("", "عمارة سكنية")))
	assert.Equal(t, imageTable[2].url, pickImage(text("Apartment for rent", "")))
	assert.Equal(t, imageTable[3].url, pickImage(text("فيلا", "")))
	assert.Equal(t, imageTable[4].url, pickImage(text("مكتب تجاري", "")))
	assert.Equal(t, fallbackImage, pickImage(text("استراحة", "")))
	// Land outranks villa when both appear.
	assert.Equal(t, imageTable[0].url, pickImage(text("فيلا", "مع أرض")))
}
