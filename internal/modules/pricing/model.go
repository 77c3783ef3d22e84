// README: Pricing buckets and quote model.
package pricing

type Bucket string

const (
	BucketWork         Bucket = "work"
	BucketEvening      Bucket = "evening"
	BucketNight        Bucket = "night"
	BucketEarlyMorning Bucket = "early_morning"
)
