package models

// DocumentKey names a configuration document in storage.
type DocumentKey string

const (
	DocFidelityBonus DocumentKey = "sigma.fidelity"
	DocTopSigma      DocumentKey = "sigma.top"
	DocSigmaSettings DocumentKey = "sigma.settings"
	DocCareerRules   DocumentKey = "career.rules"

	// DocPinLevels names the PIN ladder in logs and metrics. PINs are stored
	// as rows, not as a document.
	DocPinLevels DocumentKey = "career.levels"
)

func (k DocumentKey) String() string {
	return string(k)
}
