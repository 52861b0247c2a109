// Package i18n holds the user-facing strings for each supported language
package i18n

// DefaultLanguage is used when a session has no or an unknown language
const DefaultLanguage = "en"

// Messages is one language's string table
type Messages struct {
	Lang string

	Title                   string
	Tagline                 string
	UploadText              string
	SupportedFormats        string
	ImageRecognition        string
	ImageRecognitionDesc    string
	TrashClassification     string
	TrashClassificationDesc string
	NearbyDumpsters         string
	NearbyDumpstersDesc     string
	RecentAnalyses          string
	PastPhotos              string
	PrivacyPolicy           string
	TermsOfUse              string
	DarkMode                string

	Result          string
	ContainsMoeru   string
	ContainsMoenai  string
	Yes             string
	No              string
	Moeru           string
	Moenai          string
	Detection       string
	NotDetection    string
	NearestBins     string
	Redo            string
	Retry           string
	ArchiveDisabled string
	NoPhotos        string
	HistoryFailed   string
	FileName        string
	FileSize        string
	Uploaded        string
	Analyze         string
	Upload          string
	Language        string

	StatusAnalyzing string
	StatusSucceeded string
	StatusFailed    string
	StatusNoImage   string
	UploadRejected  string
	UploadFailed    string
	UploadNoFile    string
}

var tables = map[string]Messages{
	"en": {
		Lang:                    "en",
		Title:                   "Trash Image Analyzer",
		Tagline:                 "AI-powered waste sorting for a cleaner future",
		UploadText:              "Drag and drop your image here, or click to select a file",
		SupportedFormats:        "Supported formats: JPG, PNG, GIF (max 5MB)",
		ImageRecognition:        "Image Recognition",
		ImageRecognitionDesc:    "Advanced AI image analysis",
		TrashClassification:     "Trash Classification",
		TrashClassificationDesc: "Burnable vs Non-burnable",
		NearbyDumpsters:         "Nearby Dumpsters",
		NearbyDumpstersDesc:     "Find closest disposal locations",
		RecentAnalyses:          "Recent Analyses",
		PastPhotos:              "Past Photos",
		PrivacyPolicy:           "Privacy Policy",
		TermsOfUse:              "Terms of Use",
		DarkMode:                "Dark mode",

		Result:          "Result",
		ContainsMoeru:   "Contains Moeru",
		ContainsMoenai:  "Contains Moenai",
		Yes:             "Yes",
		No:              "No",
		Moeru:           "Moeru Trash",
		Moenai:          "Moenai Trash",
		Detection:       "Detection",
		NotDetection:    "Not Detection",
		NearestBins:     "Nearest Trash Bins",
		Redo:            "Redo",
		Retry:           "Retry",
		ArchiveDisabled: "Photo archive is not configured.",
		NoPhotos:        "No photos yet.",
		HistoryFailed:   "Failed to load past photos.",
		FileName:        "File",
		FileSize:        "Size",
		Uploaded:        "Uploaded",
		Analyze:         "Analyze",
		Upload:          "Upload",
		Language:        "Language",

		StatusAnalyzing: "Analyzing the image...",
		StatusSucceeded: "Image analysis completed successfully.",
		StatusFailed:    "Failed to analyze the image. Please try again.",
		StatusNoImage:   "No image selected.",
		UploadRejected:  "The image was rejected by the analyzer.",
		UploadFailed:    "Could not reach the analyzer. Please try again.",
		UploadNoFile:    "Please select an image file.",
	},
	"ja": {
		Lang:                    "ja",
		Title:                   "ゴミ画像分析AI",
		Tagline:                 "AIを活用したゴミ分別で、よりクリーンな未来へ",
		UploadText:              "ここに画像をドラッグ＆ドロップするか、クリックしてファイルを選択してください",
		SupportedFormats:        "対応フォーマット：JPG、PNG、GIF（最大5MB）",
		ImageRecognition:        "画像認識",
		ImageRecognitionDesc:    "高度なAI画像分析",
		TrashClassification:     "ゴミ分類",
		TrashClassificationDesc: "燃えるゴミ vs 燃えないゴミ",
		NearbyDumpsters:         "近くのゴミ箱",
		NearbyDumpstersDesc:     "最寄りの廃棄場所を探す",
		RecentAnalyses:          "最近の分析",
		PastPhotos:              "過去の写真",
		PrivacyPolicy:           "プライバシーポリシー",
		TermsOfUse:              "利用規約",
		DarkMode:                "ダークモード",

		Result:          "結果",
		ContainsMoeru:   "燃えるゴミ",
		ContainsMoenai:  "燃えないゴミ",
		Yes:             "あり",
		No:              "なし",
		Moeru:           "燃えるゴミ",
		Moenai:          "燃えないゴミ",
		Detection:       "検出",
		NotDetection:    "未検出",
		NearestBins:     "最寄りのゴミ箱",
		Redo:            "再分析",
		Retry:           "やり直す",
		ArchiveDisabled: "写真アーカイブは設定されていません。",
		NoPhotos:        "写真はまだありません。",
		HistoryFailed:   "過去の写真を読み込めませんでした。",
		FileName:        "ファイル",
		FileSize:        "サイズ",
		Uploaded:        "アップロード日時",
		Analyze:         "分析する",
		Upload:          "アップロード",
		Language:        "言語",

		StatusAnalyzing: "画像を分析しています...",
		StatusSucceeded: "画像の分析が完了しました。",
		StatusFailed:    "画像の分析に失敗しました。もう一度お試しください。",
		StatusNoImage:   "画像が選択されていません。",
		UploadRejected:  "画像が分析サービスに拒否されました。",
		UploadFailed:    "分析サービスに接続できませんでした。もう一度お試しください。",
		UploadNoFile:    "画像ファイルを選択してください。",
	},
}

// Languages lists the supported language codes
func Languages() []string {
	return []string{"en", "ja"}
}

// Supported reports whether lang has a string table
func Supported(lang string) bool {
	_, ok := tables[lang]
	return ok
}

// For returns the table for lang, falling back to English
func For(lang string) Messages {
	if m, ok := tables[lang]; ok {
		return m
	}
	return tables[DefaultLanguage]
}
