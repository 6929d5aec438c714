package tara

// Категории активов ТС (по ISO/SAE 21434)
type AssetCategory string

const (
	AssetECU       AssetCategory = "ecu"
	AssetGateway   AssetCategory = "gateway"
	AssetBus       AssetCategory = "bus"
	AssetSensor    AssetCategory = "sensor"
	AssetExternal  AssetCategory = "external_interface"
	AssetBackend   AssetCategory = "backend"
	AssetFirmware  AssetCategory = "firmware"
	AssetDataStore AssetCategory = "data_store"
)

// Защищаемые свойства актива (CIA + AAA)
type SecurityAttributes struct {
	Confidentiality bool `json:"confidentiality"`
	Integrity       bool `json:"integrity"`
	Availability    bool `json:"availability"`
	Authenticity    bool `json:"authenticity"`
	Authorization   bool `json:"authorization"`
	NonRepudiation  bool `json:"non_repudiation"`
}

// AssetDescriptor — актив, выявленный на этапе идентификации.
// После выдачи этапом не изменяется.
type AssetDescriptor struct {
	Name       string             `json:"name"`
	Category   AssetCategory      `json:"category"`
	Interfaces []string           `json:"interfaces"`
	Attributes SecurityAttributes `json:"attributes"`
}

// Категории угроз STRIDE
type StrideCategory string

const (
	StrideSpoofing    StrideCategory = "spoofing"
	StrideTampering   StrideCategory = "tampering"
	StrideRepudiation StrideCategory = "repudiation"
	StrideInfoLeak    StrideCategory = "information_disclosure"
	StrideDoS         StrideCategory = "denial_of_service"
	StrideElevation   StrideCategory = "elevation_of_privilege"
)

// ThreatCandidate — кандидат угрозы для конкретного актива
type ThreatCandidate struct {
	AssetName    string         `json:"asset_name"`
	Category     StrideCategory `json:"category"`
	Description  string         `json:"description"`
	AttackVector string         `json:"attack_vector"`
}
