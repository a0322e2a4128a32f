// Package i18n holds the user-facing strings for the two supported locales.
package i18n

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/abadojack/whatlanggo"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Locale is a supported UI locale.
type Locale string

const (
	English Locale = "en"
	Arabic  Locale = "ar"
	// Auto picks the locale from the script of each transcript.
	Auto Locale = "auto"
)

// Message keys.
const (
	AppTitle               = "appTitle"
	AppDescription         = "appDescription"
	Listening              = "listening"
	NotListening           = "notListening"
	Transcript             = "transcript"
	TableEmpty             = "tableEmpty"
	ExampleCommands        = "exampleCommands"
	ExampleCreate          = "exampleCreate"
	ExampleAdd             = "exampleAdd"
	NotSupported           = "notSupported"
	MicrophoneDenied       = "microphoneDenied"
	RecognitionUnavailable = "recognitionUnavailable"
	RecognitionError       = "recognitionError"
	Retrying               = "retrying"
	Error                  = "error"
	Success                = "success"
	TableExported          = "tableExported"
	TableCleared           = "tableCleared"
	RowAdded               = "rowAdded"
	TableCreated           = "tableCreated"
	NoColumns              = "noColumns"
	NotRecognized          = "notRecognized"
)

var translations = map[Locale]map[string]string{
	English: {
		AppTitle:               "Voice Table Creator",
		AppDescription:         "Create and fill tables using voice commands",
		Listening:              "Listening...",
		NotListening:           "Not listening",
		Transcript:             "Transcript",
		TableEmpty:             "No table created yet. Try saying: 'Create a table with 3 columns named Name, Age, City'",
		ExampleCommands:        "Example Commands",
		ExampleCreate:          "Create a table with 5 columns named Name, Age, City, Email, Salary",
		ExampleAdd:             "Add a row: John, 25, Delhi, john@gmail.com, 30000",
		NotSupported:           "Speech recognition is not supported by this transcript source.",
		MicrophoneDenied:       "Microphone access denied. Please allow microphone permissions.",
		RecognitionUnavailable: "Speech recognition unavailable after %d retries.",
		RecognitionError:       "Speech recognition error: %s",
		Retrying:               "Network error, retrying (%d/%d)...",
		Error:                  "Error",
		Success:                "Success",
		TableExported:          "Table exported to %s",
		TableCleared:           "Table cleared",
		RowAdded:               "Row added successfully!",
		TableCreated:           "Table created with %d columns",
		NoColumns:              "Create a table before adding rows",
		NotRecognized:          "Command not recognized",
	},
	Arabic: {
		AppTitle:               "منشئ الجداول الصوتية",
		AppDescription:         "إنشاء وملء الجداول باستخدام الأوامر الصوتية",
		Listening:              "جاري الاستماع...",
		NotListening:           "الاستماع متوقف",
		Transcript:             "النص المكتوب",
		TableEmpty:             "لم يتم إنشاء جدول بعد. حاول أن تقول: 'إنشاء جدول بـ 3 أعمدة بأسماء الاسم، العمر، المدينة'",
		ExampleCommands:        "أمثلة الأوامر",
		ExampleCreate:          "إنشاء جدول بـ 5 أعمدة بأسماء الاسم، العمر، المدينة، البريد الإلكتروني، الراتب",
		ExampleAdd:             "إضافة صف: أحمد، 25، الرياض، ahmed@gmail.com، 30000",
		NotSupported:           "التعرف على الكلام غير مدعوم من مصدر النص هذا.",
		MicrophoneDenied:       "تم رفض الوصول إلى الميكروفون. يرجى السماح بأذونات الميكروفون.",
		RecognitionUnavailable: "التعرف على الكلام غير متاح بعد %d محاولات.",
		RecognitionError:       "خطأ في التعرف على الكلام: %s",
		Retrying:               "خطأ في الشبكة، إعادة المحاولة (%d/%d)...",
		Error:                  "خطأ",
		Success:                "نجح",
		TableExported:          "تم تصدير الجدول إلى %s",
		TableCleared:           "تم مسح الجدول",
		RowAdded:               "تمت إضافة الصف بنجاح!",
		TableCreated:           "تم إنشاء الجدول بـ %d أعمدة",
		NoColumns:              "أنشئ جدولاً قبل إضافة الصفوف",
		NotRecognized:          "لم يتم التعرف على الأمر",
	},
}

var tags = map[Locale]language.Tag{
	English: language.English,
	Arabic:  language.Arabic,
}

var cat = buildCatalog()

func buildCatalog() catalog.Catalog {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for loc, msgs := range translations {
		for key, msg := range msgs {
			if err := b.SetString(tags[loc], key, msg); err != nil {
				panic(fmt.Sprintf("i18n: %s/%s: %v", loc, key, err))
			}
		}
	}
	return b
}

// Parse resolves a locale name or BCP 47 tag ("ar-SA", "en_US") to a
// supported Locale.
func Parse(s string) (Locale, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	if s == "" {
		return English, nil
	}
	if s == string(Auto) {
		return Auto, nil
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return "", fmt.Errorf("invalid locale %q: %w", s, err)
	}
	base, _ := tag.Base()
	switch Locale(base.String()) {
	case English:
		return English, nil
	case Arabic:
		return Arabic, nil
	}
	return "", fmt.Errorf("unsupported locale %q (supported: en, ar, auto)", s)
}

// Detect guesses the locale of a transcript from its script, returning
// fallback when the text is neither Arabic nor Latin script.
func Detect(text string, fallback Locale) Locale {
	info := whatlanggo.Detect(text)
	switch info.Script {
	case unicode.Arabic:
		return Arabic
	case unicode.Latin:
		return English
	}
	return fallback
}

// Messages formats strings for one locale.
type Messages struct {
	locale  Locale
	printer *message.Printer
}

// New returns the messages for l. Auto and unknown locales use English.
func New(l Locale) *Messages {
	tag, ok := tags[l]
	if !ok {
		l, tag = English, language.English
	}
	return &Messages{locale: l, printer: message.NewPrinter(tag, message.Catalog(cat))}
}

// Locale returns the resolved locale.
func (m *Messages) Locale() Locale {
	return m.locale
}

// RTL reports whether the locale is written right to left.
func (m *Messages) RTL() bool {
	return m.locale == Arabic
}

// Get formats the message for key with args.
func (m *Messages) Get(key string, args ...interface{}) string {
	return m.printer.Sprintf(key, args...)
}
