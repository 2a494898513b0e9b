package aws

// Static on-demand rate tables (us-east-1 list prices). The live
// pricing API is deliberately not consulted: estimates must be
// deterministic and reproducible across cycles.

// ec2HourlyRates maps instance types to USD per hour.
var ec2HourlyRates = map[string]float64{
	"t2.micro":   0.0116,
	"t2.small":   0.023,
	"t2.medium":  0.0464,
	"t3.micro":   0.0104,
	"t3.small":   0.0208,
	"t3.medium":  0.0416,
	"t3.large":   0.0832,
	"m5.large":   0.096,
	"m5.xlarge":  0.192,
	"m5.2xlarge": 0.384,
	"c5.large":   0.085,
	"c5.xlarge":  0.17,
	"r5.large":   0.126,
	"r5.xlarge":  0.252,
}

// defaultEC2HourlyRate covers instance types missing from the table.
const defaultEC2HourlyRate = 0.10

// rdsHourlyRates maps DB instance classes to USD per hour
// (single-AZ, license-included baseline).
var rdsHourlyRates = map[string]float64{
	"db.t3.micro":  0.017,
	"db.t3.small":  0.034,
	"db.t3.medium": 0.068,
	"db.m5.large":  0.171,
	"db.m5.xlarge": 0.342,
	"db.r5.large":  0.24,
	"db.r5.xlarge": 0.48,
}

const defaultRDSHourlyRate = 0.10

// ebsMonthlyRatePerGB maps volume types to USD per GB-month.
var ebsMonthlyRatePerGB = map[string]float64{
	"gp2":      0.10,
	"gp3":      0.08,
	"io1":      0.125,
	"io2":      0.125,
	"st1":      0.045,
	"sc1":      0.015,
	"standard": 0.05,
}

const defaultEBSMonthlyRatePerGB = 0.10

// s3MonthlyRatePerGB is the standard-storage USD per GB-month rate.
const s3MonthlyRatePerGB = 0.023

// hoursPerMonth mirrors the projection constant used by the
// classification engine.
const hoursPerMonth = 730

func ec2HourlyCost(instanceType string) float64 {
	if rate, ok := ec2HourlyRates[instanceType]; ok {
		return rate
	}
	return defaultEC2HourlyRate
}

func rdsHourlyCost(instanceClass string) float64 {
	if rate, ok := rdsHourlyRates[instanceClass]; ok {
		return rate
	}
	return defaultRDSHourlyRate
}

func ebsHourlyCost(volumeType string, sizeGB int64) float64 {
	rate, ok := ebsMonthlyRatePerGB[volumeType]
	if !ok {
		rate = defaultEBSMonthlyRatePerGB
	}
	return rate * float64(sizeGB) / hoursPerMonth
}

func s3HourlyCost(sizeBytes float64) float64 {
	sizeGB := sizeBytes / (1024 * 1024 * 1024)
	return s3MonthlyRatePerGB * sizeGB / hoursPerMonth
}
