package email

const (
	subjectWelcome        = "Welcome to Smart CRM"
	subjectReportReadyFmt = "Your %s report for %s is ready"
)
