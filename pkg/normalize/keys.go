package normalize

// Ordered accessor lists. The first key holding a non-null value wins.
var (
	textKeys = []string{"text", "questionText", "question", "label", "property_question_text", "name", "title"}

	fieldNameKeys = []string{"fieldName", "field_name", "field", "name"}

	idKeys = []string{"id", "questionId", "question_id"}

	requiredKeys = []string{"required", "isRequired", "property_required"}

	optionKeys = []string{"options", "choices", "values", "answers", "property_options"}

	optionValueKeys = []string{"value", "id", "key", "label", "text"}

	optionLabelKeys = []string{"label", "text", "name"}

	safeKeys = []string{"safe", "safeAnswers", "safe_answers", "property_safe_answers"}

	flagKeys = []string{"flag", "flagAnswers", "flag_answers", "property_flag", "property_flag_answers"}

	disqualifyKeys = []string{"disqualify", "disqualifyAnswers", "disqualify_answers", "property_disqualify", "property_disqualify_answers"}

	typeHintKeys = []string{"type", "questionType", "inputType", "widget", "property_question_type"}

	multipleKeys = []string{"multiple", "allowMultiple", "allow_multiple", "multi", "property_allow_multiple"}

	showConditionKeys = []string{"showCondition", "show_condition", "condition", "property_show_condition"}

	disqualifyMessageKeys = []string{"disqualifyMessage", "disqualify_message", "property_disqualify_message"}

	placeholderKeys = []string{"placeholder", "hint"}

	minKeys = []string{"min", "minimum"}

	maxKeys = []string{"max", "maximum"}

	acceptKeys = []string{"accept", "fileTypes"}

	rowsKeys = []string{"rows"}

	orderKeys = []string{"order", "property_order"}

	sectionTitleKeys = []string{"title", "name", "section", "label"}

	sectionQuestionKeys = []string{"questions", "fields", "items"}
)

// Form level metadata.
var (
	titleKeys = []string{"title", "formName", "form_name", "screener", "name"}

	subtitleKeys = []string{"subtitle", "description"}

	categoryKeys = []string{"category", "type", "property_category"}

	consultTypeKeys = []string{"consultType", "consult_type", "property_consult_type"}
)

// Keys that never become candidate sections.
var reservedKeys = map[string]struct{}{
	"questions": {},
	"config":    {},
	"metadata":  {},
}

const sectionsKey = "sections"

// missingOrder sorts entries without an explicit order after ordered ones.
const missingOrder = 999
