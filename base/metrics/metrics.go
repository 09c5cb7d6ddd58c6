package metrics

const (
	SimRunsH           = "The total number of closed-loop simulation runs completed"
	SimRunsN           = "hvacsim_sim_runs"
	SimRunErrorsH      = "The total number of closed-loop simulation runs aborted by an error"
	SimRunErrorsN      = "hvacsim_sim_run_errors"
	SimStepsH          = "The total number of simulation steps executed"
	SimStepsN          = "hvacsim_sim_steps"
	SimDisturbancesH   = "The total number of scheduled disturbances applied to the plant"
	SimDisturbancesN   = "hvacsim_sim_disturbances"
	SimLastTempH       = "The plant temperature at the last recorded sample of a run"
	SimLastTempN       = "hvacsim_sim_last_temperature"
	SimLastPowerH      = "The control effort at the last recorded sample of a run"
	SimLastPowerN      = "hvacsim_sim_last_power"
	SimIAEH            = "The integral of absolute error of the last completed run"
	SimIAEN            = "hvacsim_sim_iae"
	ServerReqsServedH  = "The total number of API requests served"
	ServerReqsServedN  = "hvacsim_server_reqs_served"
	ServerReqsFailedH  = "The total number of API requests rejected or failed"
	ServerReqsFailedN  = "hvacsim_server_reqs_failed"
	BenchmarkStepsH    = "The total number of controller steps timed by the benchmark"
	BenchmarkStepsN    = "hvacsim_benchmark_steps"
	ControllerLabel    = "controller"
	ControllerLabelPID = "pid"
	ControllerLabelFLC = "fuzzy"
)
