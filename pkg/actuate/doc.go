/*
Package actuate replays the UI steps attached to an answer.

A Plan is run step by step against a ports.Dispatcher: clicks go through
as-is and typed text is sent one keystroke at a time, paced by a rate
limiter so the page sees something close to a person typing.

	s := actuate.NewScheduler(dispatcher, actuate.WithKeystrokeRate(20))
	err := s.Run(ctx, reply.Plan)
*/
package actuate
