package config

const RelayConfigTemplate = `db_host = "{{ .DbHost }}"
db_port = {{ .DbPort }}
db_username = "{{ .DbUsername }}"
db_password = "{{ .DbPassword }}"
db_schema = "{{ .DbSchema }}"
in_memory = {{ .InMemory }}

server_port = {{ .ServerPort }}
router_url = "{{ .RouterUrl }}"
router_poll_ms = {{ .RouterPollMs }}
sweep_schedule = "{{ .SweepSchedule }}"
quote_cache_size = {{ .QuoteCacheSize }}

auto_confirm_transactions = {{ .AutoConfirmTransactions }}
confirmation_timeout_ms = {{ .ConfirmationTimeoutMs }}
pending_operation_timeout_ms = {{ .PendingOperationTimeoutMs }}

[chains]{{ range $k, $v := .Chains }}
	[chains.{{ $k }}]
	chain = "{{ $k }}"
	chain_id = {{ $v.ChainId }}
	rpc_url = "{{ $v.RpcUrl }}"
	explorer_url = "{{ $v.ExplorerUrl }}"
{{ end }}
`
