package domain

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/message/catalog"
)

// Message keys. Every user-visible string goes through the catalog.
const (
	MsgInvalidFileType   = "invalid_file_type"
	MsgPreparingPDF      = "preparing_pdf"
	MsgProcessingPage    = "processing_page"
	MsgReadFailed        = "read_failed"
	MsgPDFDecodeFailed   = "pdf_decode_failed"
	MsgPDFRenderFailed   = "pdf_render_failed"
	MsgEngineFailed      = "engine_failed"
	MsgSendingToAI       = "sending_to_ai"
	MsgProviderFailed    = "provider_failed"
	MsgSearchFailed      = "search_failed"
	MsgConfigMissing     = "config_missing"
	MsgUnknownError      = "unknown_error"
	MsgCancelled         = "cancelled"
	MsgModeUnsupported   = "mode_unsupported"
	MsgPromptSingleImage = "prompt_single_image"
	MsgPromptMultiImage  = "prompt_multi_image"
	MsgInstrHandwriting  = "instr_handwriting"
	MsgInstrPDF          = "instr_pdf"
	MsgInstrDefault      = "instr_default"
	MsgInstrLiterature   = "instr_literature_review"
	MsgPromptLiterature  = "prompt_literature_review"
	MsgInstrExercise     = "instr_exercise"
	MsgInstrProgramming  = "instr_programming"

	MsgTitleHandwriting       = "title_handwriting"
	MsgTitlePDF               = "title_pdf"
	MsgTitleAudio             = "title_audio"
	MsgTitleVideo             = "title_video"
	MsgReasonAudio            = "reason_audio"
	MsgReasonVideo            = "reason_video"
	MsgTitleLiteratureReview  = "title_literature_review"
	MsgTitleSummarizer        = "title_summarizer"
	MsgTitleParaphraser       = "title_paraphraser"
	MsgTitleProposal          = "title_proposal"
	MsgFieldEngineering       = "field_engineering"
	MsgFieldBasicSciences     = "field_basic_sciences"
	MsgFieldMedical           = "field_medical"
	MsgFieldOther             = "field_other"
	MsgFieldDataMining        = "field_data_mining"
	MsgFieldMachineLearning   = "field_machine_learning"
	MsgFieldElectrical        = "field_electrical"
	MsgFieldAIAnalysis        = "field_ai_analysis"
	MsgFieldAlgorithms        = "field_algorithms"
	MsgFieldCharting          = "field_charting"
)

var (
	english = map[string]string{
		MsgInvalidFileType:   "Please select a file of type %s.",
		MsgPreparingPDF:      "Preparing the PDF library...",
		MsgProcessingPage:    "processing page %d of %d...",
		MsgReadFailed:        "Could not read the file.",
		MsgPDFDecodeFailed:   "Could not process the PDF file. It may be corrupt or incompatible.",
		MsgPDFRenderFailed:   "Could not render page %d of the PDF file.",
		MsgEngineFailed:      "Could not load or run the library required to process PDF files.",
		MsgSendingToAI:       "Sending data to the AI...",
		MsgProviderFailed:    "Sorry, something went wrong while processing your request. Please try again.",
		MsgSearchFailed:      "Sorry, something went wrong while processing your request with Google Search.",
		MsgConfigMissing:     "The API key is not configured. Set the GEMINI_API_KEY environment variable.",
		MsgUnknownError:      "An unknown error occurred.",
		MsgCancelled:         "Processing was cancelled before it finished.",
		MsgModeUnsupported:   "This mode is not supported yet.",
		MsgPromptSingleImage: "Please extract the content of this image.",
		MsgPromptMultiImage:  "These images are consecutive pages of a single document. Extract the text from every page and combine pages in order into one coherent document.",
		MsgInstrHandwriting:  "You are an advanced AI specialised in analysing and transcribing complex handwriting. Reproduce the text of the following image with the highest possible accuracy. Stay faithful to details, punctuation and the original structure. Output only the extracted text, formatted with Markdown.",
		MsgInstrPDF:          "You are a text extraction (OCR) expert. You receive a set of images that are consecutive pages of one document. Accurately extract the text, formulas, tables and overall structure from every page, combine pages in order into one coherent document, and format the entire content as a single Markdown document.",
		MsgInstrDefault:      "Extract the text from the input image.",
		MsgInstrLiterature:   "You are an expert research assistant. Provide a comprehensive yet concise literature review of the requested topic. Find the most recent relevant papers, summarise them and identify open research gaps. Your answer must be scholarly, reliable and up to date.",
		MsgPromptLiterature:  "Literature review for the topic: \"%s\"",
		MsgInstrExercise:     "You are a distinguished and patient university professor. Give a complete, precise, step-by-step answer to the following question in the field of \"%s\". Write all formulas and mathematical expressions in LaTeX syntax: use $$...$$ for large formulas on their own line and $...$ for inline formulas. Use headings, lists and paragraphs for readability.",
		MsgInstrProgramming:  "You are a senior software engineer specialised in \"%s\". Answer the following request. Provide code in Markdown code blocks and explain every part of the code. Your answer must be technical, precise and practical.",

		MsgTitleHandwriting:      "From handwritten notes",
		MsgTitlePDF:              "From PDF",
		MsgTitleAudio:            "From audio",
		MsgTitleVideo:            "From video",
		MsgReasonAudio:           "Extracting text from audio files is a complex process that the client-side Gemini API does not currently support. We are looking into alternatives for the future.",
		MsgReasonVideo:           "Extracting text from video files requires heavy server-side processing and cannot be offered in this environment. Please use one of the other modes.",
		MsgTitleLiteratureReview: "Literature review",
		MsgTitleSummarizer:       "Paper summarizer",
		MsgTitleParaphraser:      "Paraphraser",
		MsgTitleProposal:         "Proposal writer",
		MsgFieldEngineering:      "Engineering",
		MsgFieldBasicSciences:    "Basic sciences",
		MsgFieldMedical:          "Medicine and allied sciences",
		MsgFieldOther:            "Other fields",
		MsgFieldDataMining:       "Data mining",
		MsgFieldMachineLearning:  "Machine learning",
		MsgFieldElectrical:       "Electrical engineering",
		MsgFieldAIAnalysis:       "AI analysis",
		MsgFieldAlgorithms:       "Algorithms",
		MsgFieldCharting:         "Charting",
	}

	persian = map[string]string{
		MsgInvalidFileType:   "لطفا یک فایل از نوع %s انتخاب کنید.",
		MsgPreparingPDF:      "در حال آماده‌سازی کتابخانه PDF...",
		MsgProcessingPage:    "درحال پردازش صفحه %d از %d...",
		MsgReadFailed:        "خطا در خواندن فایل.",
		MsgPDFDecodeFailed:   "خطا در پردازش فایل PDF. ممکن است فایل شما خراب یا ناسازگار باشد.",
		MsgPDFRenderFailed:   "خطا در پردازش صفحه %d از فایل PDF.",
		MsgEngineFailed:      "خطا در بارگذاری یا اجرای کتابخانه مورد نیاز برای پردازش PDF.",
		MsgSendingToAI:       "در حال ارسال داده‌ها به هوش مصنوعی...",
		MsgProviderFailed:    "متاسفانه در پردازش درخواست شما خطایی رخ داد. لطفا دوباره تلاش کنید.",
		MsgSearchFailed:      "متاسفانه در پردازش درخواست شما با جستجوی گوگل خطایی رخ داد.",
		MsgConfigMissing:     "کلید API تنظیم نشده است. لطفا متغیر محیطی GEMINI_API_KEY را تنظیم کنید.",
		MsgUnknownError:      "یک خطای ناشناخته رخ داد.",
		MsgCancelled:         "پردازش پیش از پایان لغو شد.",
		MsgModeUnsupported:   "این حالت در حال حاضر پشتیبانی نمی‌شود.",
		MsgPromptSingleImage: "لطفا محتوای این تصویر را استخراج کن.",
		MsgPromptMultiImage:  "این مجموعه ای از تصاویر صفحات یک سند است. لطفاً متن را از تمام صفحات به ترتیب استخراج کرده و آنها را در یک سند واحد و منسجم ترکیب کنید.",
		MsgInstrHandwriting:  "شما یک هوش مصنوعی پیشرفته با تخصص ویژه در تحلیل و استخراج متن از دست‌نوشته‌های پیچیده هستید. وظیفه شما این است که متن تصویر زیر را با بالاترین دقت ممکن بازنویسی کنید. به جزئیات، علائم نگارشی و ساختار اصلی کاملاً وفادار بمانید. خروجی باید فقط و فقط متن استخراج شده باشد و با استفاده از Markdown فرمت‌بندی شود.",
		MsgInstrPDF:          "شما یک متخصص استخراج متن (OCR) هستید. شما مجموعه‌ای از تصاویر را دریافت می‌کنید که صفحات متوالی یک سند هستند. متن، فرمول‌ها، جداول و ساختار کلی را از تمام صفحات با دقت استخراج کرده، به ترتیب صحیح ترکیب کنید و کل محتوا را با استفاده از Markdown به صورت یک سند واحد فرمت‌بندی نمایید.",
		MsgInstrDefault:      "متن را از تصویر ورودی استخراج کن.",
		MsgInstrLiterature:   "شما یک دستیار پژوهشی متخصص هستید. بر اساس موضوع خواسته شده، یک مرور ادبیات جامع و مختصر ارائه دهید. جدیدترین مقالات مرتبط را بیابید، آن‌ها را خلاصه کنید و شکاف‌های پژوهشی موجود را مشخص نمایید. پاسخ شما باید کاملا علمی، موثق و به روز باشد. زبان پاسخ فارسی باشد.",
		MsgPromptLiterature:  "مرور ادبیات برای موضوع: \"%s\"",
		MsgInstrExercise:     "شما یک پروفسور دانشگاهی برجسته و صبور هستید. به سوال زیر که در حوزه \"%s\" پرسیده شده، یک پاسخ کامل، دقیق و گام به گام ارائه دهید. تمام فرمول‌ها و عبارات ریاضی را با سینتکس LaTeX بنویسید. برای فرمول‌های بزرگ و در خط جداگانه از $$...$$ و برای فرمول‌های داخل متن از $...$ استفاده کنید. از تیترها، لیست‌ها و پاراگراف‌بندی مناسب برای خوانایی بهتر استفاده کنید. زبان پاسخ فارسی باشد.",
		MsgInstrProgramming:  "شما یک مهندس نرم‌افزار ارشد و متخصص در حوزه \"%s\" هستید. به درخواست زیر پاسخ دهید. کدها را در بلوک‌های کد Markdown ارائه دهید و توضیحات لازم را برای هر بخش از کد بنویسید. پاسخ شما باید کاملا فنی، دقیق و کاربردی باشد. زبان پاسخ فارسی باشد.",

		MsgTitleHandwriting:      "از جزوه دست‌نویس",
		MsgTitlePDF:              "از PDF",
		MsgTitleAudio:            "از فایل صوتی",
		MsgTitleVideo:            "از ویدئو",
		MsgReasonAudio:           "استخراج متن از فایل‌های صوتی یک فرآیند پیچیده است که در حال حاضر توسط API سمت کاربر Gemini پشتیبانی نمی‌شود. ما در حال بررسی راهکارهای جایگزین برای ارائه این قابلیت در آینده هستیم.",
		MsgReasonVideo:           "استخراج متن از فایل‌های ویدئویی نیازمند پردازش سنگین در سمت سرور است و در حال حاضر در این محیط قابل پیاده‌سازی نیست. از حالت‌های دیگر استفاده کنید.",
		MsgTitleLiteratureReview: "مرور ادبیات",
		MsgTitleSummarizer:       "خلاصه‌ساز مقاله",
		MsgTitleParaphraser:      "بازنویسی متن",
		MsgTitleProposal:         "نگارش پروپوزال",
		MsgFieldEngineering:      "فنی و مهندسی",
		MsgFieldBasicSciences:    "علوم پایه",
		MsgFieldMedical:          "پزشکی و علوم وابسته",
		MsgFieldOther:            "سایر رشته‌ها",
		MsgFieldDataMining:       "دیتا ماینینگ",
		MsgFieldMachineLearning:  "یادگیری ماشین",
		MsgFieldElectrical:       "مهندسی برق",
		MsgFieldAIAnalysis:       "تحلیل‌های هوش مصنوعی",
		MsgFieldAlgorithms:       "الگوریتم‌ها",
		MsgFieldCharting:         "رسم نمودار",
	}
)

// Messages renders localized user-facing strings.
type Messages struct {
	tag     language.Tag
	printer *message.Printer
}

// NewMessages builds the catalog and returns a printer for locale.
// Unknown locales fall back to English.
func NewMessages(locale string) *Messages {
	b := catalog.NewBuilder(catalog.Fallback(language.English))
	for key, msg := range english {
		_ = b.SetString(language.English, key, msg)
	}
	for key, msg := range persian {
		_ = b.SetString(language.Persian, key, msg)
	}

	tag := language.English
	if parsed, err := language.Parse(locale); err == nil {
		matcher := language.NewMatcher([]language.Tag{language.English, language.Persian})
		_, idx, conf := matcher.Match(parsed)
		if conf != language.No && idx == 1 {
			tag = language.Persian
		}
	}

	return &Messages{
		tag:     tag,
		printer: message.NewPrinter(tag, message.Catalog(b)),
	}
}

// Locale returns the BCP 47 tag in use.
func (m *Messages) Locale() string {
	return m.tag.String()
}

// Get returns the localized message for key, formatted with args.
func (m *Messages) Get(key string, args ...interface{}) string {
	return m.printer.Sprintf(key, args...)
}
