package observability

// Metric name prefixes
const (
	MetricPrefix = "drawbot"
)

// Metric names
const (
	// Draw metrics
	DrawsTotal       = MetricPrefix + ".lottery.draws_total"
	DrawParticipants = MetricPrefix + ".lottery.draw_participants"
	WinnersTotal     = MetricPrefix + ".lottery.winners_total"
	RerollsTotal     = MetricPrefix + ".lottery.rerolls_total"

	// Scheduler metrics
	TimerFiresTotal = MetricPrefix + ".scheduler.timer_fires_total"
	LotteriesActive = MetricPrefix + ".scheduler.lotteries_active"

	// Membership metrics
	MembershipDegradedTotal = MetricPrefix + ".membership.degraded_total"
)

// Label keys
const (
	LabelLotteryID = "lottery_id"
	LabelKind      = "kind"
	LabelReason    = "reason"
	LabelSource    = "source"
)

// Winner sources
const (
	SourceDraw   = "draw"
	SourceReroll = "reroll"
)

// Exporter types
const (
	ExporterConsole = "console"
	ExporterOTLP    = "otlp"
	ExporterNone    = "none"
)
