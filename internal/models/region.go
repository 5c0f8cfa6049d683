package models

import "sort"

// AWSRegion enumerates the AWS regions a Bedrock backend can be configured for.
type AWSRegion string

const (
	RegionUSEast1      AWSRegion = "us-east-1"
	RegionUSEast2      AWSRegion = "us-east-2"
	RegionUSWest1      AWSRegion = "us-west-1"
	RegionUSWest2      AWSRegion = "us-west-2"
	RegionCACentral1   AWSRegion = "ca-central-1"
	RegionEUCentral1   AWSRegion = "eu-central-1"
	RegionEUCentral2   AWSRegion = "eu-central-2"
	RegionEUWest1      AWSRegion = "eu-west-1"
	RegionEUWest2      AWSRegion = "eu-west-2"
	RegionEUWest3      AWSRegion = "eu-west-3"
	RegionEUNorth1     AWSRegion = "eu-north-1"
	RegionEUSouth1     AWSRegion = "eu-south-1"
	RegionEUSouth2     AWSRegion = "eu-south-2"
	RegionAPSouth1     AWSRegion = "ap-south-1"
	RegionAPSouth2     AWSRegion = "ap-south-2"
	RegionAPNortheast1 AWSRegion = "ap-northeast-1"
	RegionAPNortheast2 AWSRegion = "ap-northeast-2"
	RegionAPNortheast3 AWSRegion = "ap-northeast-3"
	RegionAPSoutheast1 AWSRegion = "ap-southeast-1"
	RegionAPSoutheast2 AWSRegion = "ap-southeast-2"
	RegionAPSoutheast3 AWSRegion = "ap-southeast-3"
	RegionAPSoutheast4 AWSRegion = "ap-southeast-4"
	RegionAPEast1      AWSRegion = "ap-east-1"
	RegionSAEast1      AWSRegion = "sa-east-1"
	RegionMESouth1     AWSRegion = "me-south-1"
	RegionMECentral1   AWSRegion = "me-central-1"
	RegionAFSouth1     AWSRegion = "af-south-1"
	RegionILCentral1   AWSRegion = "il-central-1"
)

var knownRegions = map[AWSRegion]struct{}{
	RegionUSEast1: {}, RegionUSEast2: {}, RegionUSWest1: {}, RegionUSWest2: {},
	RegionCACentral1: {},
	RegionEUCentral1: {}, RegionEUCentral2: {}, RegionEUWest1: {}, RegionEUWest2: {},
	RegionEUWest3: {}, RegionEUNorth1: {}, RegionEUSouth1: {}, RegionEUSouth2: {},
	RegionAPSouth1: {}, RegionAPSouth2: {}, RegionAPNortheast1: {}, RegionAPNortheast2: {},
	RegionAPNortheast3: {}, RegionAPSoutheast1: {}, RegionAPSoutheast2: {},
	RegionAPSoutheast3: {}, RegionAPSoutheast4: {}, RegionAPEast1: {},
	RegionSAEast1: {}, RegionMESouth1: {}, RegionMECentral1: {}, RegionAFSouth1: {},
	RegionILCentral1: {},
}

// String returns the region tag.
func (r AWSRegion) String() string {
	return string(r)
}

// IsValid reports whether r is a recognized region.
func (r AWSRegion) IsValid() bool {
	_, ok := knownRegions[r]
	return ok
}

// ParseAWSRegion converts a raw document value into an AWSRegion.
func ParseAWSRegion(value any) (AWSRegion, error) {
	if value == nil {
		return "", newValidationError("region", "is required")
	}
	s, ok := value.(string)
	if !ok {
		return "", newValidationError("region", "expected a string, got %T", value)
	}
	region := AWSRegion(s)
	if !region.IsValid() {
		return "", newValidationError("region", "unknown region %q", s)
	}
	return region, nil
}

// Regions returns all recognized regions in lexical order.
func Regions() []AWSRegion {
	out := make([]AWSRegion, 0, len(knownRegions))
	for r := range knownRegions {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
