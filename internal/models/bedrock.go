package models

// AmazonBedrockType is the type tag of an Amazon Bedrock configuration document.
const AmazonBedrockType = "AmazonBedrock"

// Keys of the Bedrock parameters document.
const (
	keyRegion      = "region"
	keyEndpointURL = "endpointURL"
	keyProfile     = "profile"
)

// BedrockParameters holds the connection-level settings of an Amazon Bedrock backend.
type BedrockParameters struct {
	// Region to access Amazon Bedrock in.
	Region AWSRegion
	// EndpointURL, when set, replaces the regional endpoint for every call.
	EndpointURL *string
	// Profile names a shared credentials profile.
	Profile *string
}

// ParseBedrockParameters builds BedrockParameters from a document. It fails with a
// *ValidationError when region is missing or unknown.
func ParseBedrockParameters(document any) (*BedrockParameters, error) {
	doc, err := asDocument("", document)
	if err != nil {
		return nil, err
	}

	region, err := ParseAWSRegion(doc[keyRegion])
	if err != nil {
		return nil, err
	}
	endpointURL, err := fromOptionalString(doc, keyEndpointURL)
	if err != nil {
		return nil, err
	}
	profile, err := fromOptionalString(doc, keyProfile)
	if err != nil {
		return nil, err
	}

	return &BedrockParameters{
		Region:      region,
		EndpointURL: endpointURL,
		Profile:     profile,
	}, nil
}

// ToDict renders the parameters back into a document. Unset optional fields
// are rendered as nil.
func (p *BedrockParameters) ToDict() Document {
	return Document{
		keyRegion:      string(p.Region),
		keyEndpointURL: optionalString(p.EndpointURL),
		keyProfile:     optionalString(p.Profile),
	}
}

// Clone returns a deep copy.
func (p *BedrockParameters) Clone() *BedrockParameters {
	clone := &BedrockParameters{Region: p.Region}
	if p.EndpointURL != nil {
		v := *p.EndpointURL
		clone.EndpointURL = &v
	}
	if p.Profile != nil {
		v := *p.Profile
		clone.Profile = &v
	}
	return clone
}

// AmazonBedrock is the typed configuration document for Amazon Bedrock:
// {"type": "AmazonBedrock", "parameters": {...}}.
type AmazonBedrock struct {
	Parameters *BedrockParameters
	Type       string
}

// NewAmazonBedrock wraps parameters into a typed document.
func NewAmazonBedrock(parameters *BedrockParameters) *AmazonBedrock {
	return &AmazonBedrock{Parameters: parameters, Type: AmazonBedrockType}
}

// ParseAmazonBedrock parses a typed Amazon Bedrock document.
func ParseAmazonBedrock(document any) (*AmazonBedrock, error) {
	doc, err := asDocument("", document)
	if err != nil {
		return nil, err
	}

	typ, err := fromString(doc, "type")
	if err != nil {
		return nil, err
	}
	if typ != AmazonBedrockType {
		return nil, newValidationError("type", "expected %q, got %q", AmazonBedrockType, typ)
	}

	parameters, err := ParseBedrockParameters(doc["parameters"])
	if err != nil {
		return nil, prefixed("parameters", err)
	}
	return NewAmazonBedrock(parameters), nil
}

// ToDict renders the typed document.
func (b *AmazonBedrock) ToDict() Document {
	return Document{
		"parameters": b.Parameters.ToDict(),
		"type":       b.Type,
	}
}
