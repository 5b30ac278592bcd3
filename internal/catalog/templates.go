package catalog

import "github.com/cshealth/reminder-gateway/internal/model"

// One table per language. Gujarati carries the conversational kinds only; its
// reminder texts are pending translation and fall back to English.
var templates = map[model.Language]map[string]string{
	model.LanguageEnglish: englishTemplates,
	model.LanguageHindi:   hindiTemplates,
	model.LanguageGujarati: {
		KindSubscribe:            "{name} સીએસએચ આરોગ્ય રિમાઇન્ડર માટે નોંધાયેલ છે. બંધ કરવા STOP લખી મોકલો.",
		KindUnsubscribe:          "તમે સીએસએચ આરોગ્ય રિમાઇન્ડરમાંથી રદ થયા છો. ફરી જોડાવા JOIN લખી મોકલો.",
		KindFailure:              "માફ કરશો, અમે તમારો સંદેશ સમજી શક્યા નથી. નોંધણી માટે JOIN <બાળકનું નામ> <જન્મ તારીખ> લખી મોકલો.",
		KindFailedDate:           "જન્મ તારીખ સમજાઈ નથી. કૃપા કરીને તારીખ DD/MM/YYYY સ્વરૂપે મોકલો.",
		KindAlreadySubscribed:    "{name} પહેલેથી નોંધાયેલ છે.",
		KindPlaceholderChildName: "તમારું બાળક",
	},
}

var englishTemplates = map[string]string{
	KindSubscribe:            "{name} has been subscribed to CSH health reminders. Text STOP to unsubscribe.",
	KindUnsubscribe:          "You have been unsubscribed from CSH health reminders. Text JOIN to subscribe again.",
	KindFailure:              "Sorry, we could not understand your message. Text JOIN <child's name> <birthdate> to subscribe.",
	KindFailedDate:           "We could not understand the date of birth. Please text JOIN <child's name> <birthdate as DD/MM/YYYY>.",
	KindAlreadySubscribed:    "{name} is already subscribed to CSH health reminders.",
	KindPlaceholderChildName: "Your child",

	"six_week_seven_days":      "{name} has a six week immunization appointment in one week. Please visit your nearest health centre.",
	"six_week_one_day":         "{name} has a six week immunization appointment tomorrow. Please visit your nearest health centre.",
	"ten_week_seven_days":      "{name} has a ten week immunization appointment in one week. Please visit your nearest health centre.",
	"ten_week_one_day":         "{name} has a ten week immunization appointment tomorrow. Please visit your nearest health centre.",
	"fourteen_week_seven_days": "{name} has a fourteen week immunization appointment in one week. Please visit your nearest health centre.",
	"fourteen_week_one_day":    "{name} has a fourteen week immunization appointment tomorrow. Please visit your nearest health centre.",
	"nine_month_seven_days":    "{name} has a nine month immunization appointment in one week. Please visit your nearest health centre.",
	"nine_month_one_day":       "{name} has a nine month immunization appointment tomorrow. Please visit your nearest health centre.",
	"sixteen_month_seven_days": "{name} has a sixteen month immunization appointment in one week. Please visit your nearest health centre.",
	"sixteen_month_one_day":    "{name} has a sixteen month immunization appointment tomorrow. Please visit your nearest health centre.",
	"five_year_seven_days":     "{name} has a five year immunization appointment in one week. Please visit your nearest health centre.",
	"five_year_one_day":        "{name} has a five year immunization appointment tomorrow. Please visit your nearest health centre.",
}

var hindiTemplates = map[string]string{
	KindSubscribe:            "{name} का सीएसएच स्वास्थ्य अनुस्मारक में पंजीकरण हो गया है। बंद करने के लिए STOP लिखकर भेजें।",
	KindUnsubscribe:          "आपका सीएसएच स्वास्थ्य अनुस्मारक से पंजीकरण रद्द हो गया है। दोबारा जुड़ने के लिए याद लिखकर भेजें।",
	KindFailure:              "क्षमा करें, हम आपका संदेश समझ नहीं पाए। पंजीकरण के लिए याद <बच्चे का नाम> <जन्म तिथि> लिखकर भेजें।",
	KindFailedDate:           "जन्म तिथि समझ नहीं आई। कृपया तिथि DD/MM/YYYY रूप में लिखकर भेजें।",
	KindAlreadySubscribed:    "{name} का पंजीकरण पहले से है।",
	KindPlaceholderChildName: "आपके बच्चे",

	"six_week_seven_days":      "{name} का छह सप्ताह का टीकाकरण एक सप्ताह में है। कृपया नज़दीकी स्वास्थ्य केंद्र जाएँ।",
	"six_week_one_day":         "{name} का छह सप्ताह का टीकाकरण कल है। कृपया नज़दीकी स्वास्थ्य केंद्र जाएँ।",
	"ten_week_seven_days":      "{name} का दस सप्ताह का टीकाकरण एक सप्ताह में है। कृपया नज़दीकी स्वास्थ्य केंद्र जाएँ।",
	"ten_week_one_day":         "{name} का दस सप्ताह का टीकाकरण कल है। कृपया नज़दीकी स्वास्थ्य केंद्र जाएँ।",
	"fourteen_week_seven_days": "{name} का चौदह सप्ताह का टीकाकरण एक सप्ताह में है। कृपया नज़दीकी स्वास्थ्य केंद्र जाएँ।",
	"fourteen_week_one_day":    "{name} का चौदह सप्ताह का टीकाकरण कल है। कृपया नज़दीकी स्वास्थ्य केंद्र जाएँ।",
	"nine_month_seven_days":    "{name} का नौ महीने का टीकाकरण एक सप्ताह में है। कृपया नज़दीकी स्वास्थ्य केंद्र जाएँ।",
	"nine_month_one_day":       "{name} का नौ महीने का टीकाकरण कल है। कृपया नज़दीकी स्वास्थ्य केंद्र जाएँ।",
	"sixteen_month_seven_days": "{name} का सोलह महीने का टीकाकरण एक सप्ताह में है। कृपया नज़दीकी स्वास्थ्य केंद्र जाएँ।",
	"sixteen_month_one_day":    "{name} का सोलह महीने का टीकाकरण कल है। कृपया नज़दीकी स्वास्थ्य केंद्र जाएँ।",
	"five_year_seven_days":     "{name} का पाँच वर्ष का टीकाकरण एक सप्ताह में है। कृपया नज़दीकी स्वास्थ्य केंद्र जाएँ।",
	"five_year_one_day":        "{name} का पाँच वर्ष का टीकाकरण कल है। कृपया नज़दीकी स्वास्थ्य केंद्र जाएँ।",
}
