package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/kettle/taskdeck/internal/api"
	"github.com/kettle/taskdeck/internal/bus"
	"github.com/kettle/taskdeck/internal/config"
	"github.com/kettle/taskdeck/internal/notify"
	"github.com/kettle/taskdeck/internal/otel"
	"github.com/kettle/taskdeck/internal/poll"
	"github.com/kettle/taskdeck/internal/prefs"
	"github.com/kettle/taskdeck/internal/record"
	"github.com/kettle/taskdeck/internal/shared"
)

type Screen int

const (
	ScreenTasks Screen = iota
	ScreenRuns
	ScreenRunLogs
	ScreenAllLogs
	ScreenNotifications
	ScreenLogin
)

const (
	viewTasks   record.ViewIdentity = "tasks"
	viewRuns    record.ViewIdentity = "task-runs"
	viewRunLogs record.ViewIdentity = "run-logs"
	viewAllLogs record.ViewIdentity = "all-logs"
	viewNotif   record.ViewIdentity = "notifications"
	viewBadge   record.ViewIdentity = "notify-badge"
)

const badgeInterval = 5 * time.Second

// TasksSchema is the column set of the main task table.
var TasksSchema = record.Schema{
	{DataSource: "id", Title: "ID", DefaultVisible: false},
	{DataSource: "name", Title: "Name", DefaultVisible: true},
	{DataSource: "command", Title: "Command", DefaultVisible: false},
	{DataSource: "schedule", Title: "Schedule", DefaultVisible: true},
	{DataSource: "enabled", Title: "Enabled", DefaultVisible: true},
	{DataSource: "status", Title: "Status", DefaultVisible: true},
	{DataSource: "updated_at", Title: "Updated", DefaultVisible: false},
}

// RunsSchema is the column set of a task's run history.
var RunsSchema = record.Schema{
	{DataSource: "id", Title: "Run", DefaultVisible: true},
	{DataSource: "started_at", Title: "Started", DefaultVisible: true},
	{DataSource: "finished_at", Title: "Finished", DefaultVisible: true},
	{DataSource: "status", Title: "Status", DefaultVisible: true},
	{DataSource: "exit_code", Title: "Exit", DefaultVisible: false},
}

// LogsSchema covers both a single run's log lines and the all-task log.
var LogsSchema = record.Schema{
	{DataSource: "id", Title: "#", DefaultVisible: false},
	{DataSource: "created_at", Title: "Time", DefaultVisible: true},
	{DataSource: "task_name", Title: "Task", DefaultVisible: true},
	{DataSource: "message", Title: "Message", DefaultVisible: true},
	{DataSource: "err", Title: "Err", DefaultVisible: false},
}

// NotificationsSchema is the outbound notification table.
var NotificationsSchema = record.Schema{
	{DataSource: "id", Title: "ID", DefaultVisible: false},
	{DataSource: "created_at", Title: "Created", DefaultVisible: true},
	{DataSource: "recipient", Title: "Recipient", DefaultVisible: true},
	{DataSource: "subject", Title: "Subject", DefaultVisible: true},
	{DataSource: "is_sent", Title: "Sent", DefaultVisible: true},
}

// AppConfig holds the dashboard's wired dependencies.
type AppConfig struct {
	Config     *config.Config
	Logger     *slog.Logger
	Bus        *bus.Bus
	Client     *api.Client
	Prefs      *prefs.Store
	Controller *poll.Controller
	Sink       notify.Sink
	Registry   *Registry
	Metrics    *otel.Metrics
}

type busEventMsg struct{ ev bus.Event }
type busClosedMsg struct{}
type cleanupTickMsg struct{}

type allLogsLoadedMsg struct {
	rows record.Collection
	err  error
}

type mutationDoneMsg struct {
	action string
	rowID  string
	res    api.MutationResult
	err    error
}

// App is the bubbletea model for the whole dashboard.
type App struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    AppConfig
	sub    *bus.Subscription

	screen     Screen
	tasks      *TableView
	runs       *TableView
	runLogs    *TableView
	allLogs    *TableView
	notif      *TableView
	runsTaskID string
	logsRunID  string

	toasts  *ToastFeed
	confirm ConfirmDialog
	form    TaskForm

	// unsent mirrors the server's count of queued outbound
	// notifications, refreshed by its own 5s session.
	unsent atomic.Int64

	loginFrom string
	width     int
	height    int
	quitting  bool
}

func NewApp(ctx context.Context, cfg AppConfig) *App {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Sink == nil {
		cfg.Sink = notify.Discard{}
	}
	ctx, cancel := context.WithCancel(ctx)

	a := &App{
		ctx:     ctx,
		cancel:  cancel,
		cfg:     cfg,
		tasks:   NewTableView("Tasks", viewTasks, TasksSchema, cfg.Config.PageSize),
		runs:    NewTableView("Runs", viewRuns, RunsSchema, cfg.Config.PageSize),
		runLogs: NewTableView("Run log", viewRunLogs, LogsSchema, cfg.Config.PageSize),
		allLogs: NewTableView("All task logs", viewAllLogs, LogsSchema, cfg.Config.PageSize),
		notif:   NewTableView("Notifications", viewNotif, NotificationsSchema, cfg.Config.PageSize),
		toasts:  NewToastFeed(),
	}
	a.tasks.SetStatusField("status")
	a.runs.SetStatusField("status")
	a.tasks.SetSort("name", true)
	a.runLogs.SetSort("id", false)
	a.allLogs.SetSort("id", false)

	if cfg.Prefs != nil {
		for _, tv := range []*TableView{a.tasks, a.runs, a.runLogs, a.allLogs, a.notif} {
			st, err := cfg.Prefs.Load(ctx, tv.ID())
			if err != nil {
				cfg.Logger.Warn("loading view preferences failed", "view_id", string(tv.ID()), "error", err)
				continue
			}
			tv.ApplyPrefs(st)
		}
	}
	return a
}

// Run starts the program and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen())
	_, err := p.Run()
	a.shutdown()
	return err
}

func (a *App) shutdown() {
	if a.cfg.Controller != nil {
		a.cfg.Controller.StopAll()
	}
	if a.sub != nil && a.cfg.Bus != nil {
		a.cfg.Bus.Unsubscribe(a.sub)
	}
	a.cancel()
}

func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{cleanupTick()}
	if a.cfg.Bus != nil {
		a.sub = a.cfg.Bus.Subscribe("")
		cmds = append(cmds, waitForBusEvent(a.sub))
	}
	a.startTasksPolling()
	a.startBadgePolling()
	return tea.Batch(cmds...)
}

func waitForBusEvent(sub *bus.Subscription) tea.Cmd {
	return func() tea.Msg {
		ev, ok := <-sub.Ch()
		if !ok {
			return busClosedMsg{}
		}
		return busEventMsg{ev: ev}
	}
}

func cleanupTick() tea.Cmd {
	return tea.Tick(badgeInterval, func(time.Time) tea.Msg { return cleanupTickMsg{} })
}

func (a *App) startTasksPolling() {
	if a.cfg.Controller == nil {
		return
	}
	a.cfg.Controller.Start(a.ctx, viewTasks,
		func(ctx context.Context) (record.Collection, error) {
			return a.cfg.Client.FetchCollection(ctx, "/api/tasks")
		},
		func(rows record.Collection) {
			plan := a.tasks.SetRows(rows)
			a.publishRows(viewTasks, len(plan.Updates), len(plan.Inserts))
		},
		poll.Options{Interval: a.cfg.Config.CollectionInterval()},
	)
}

func (a *App) startRunsPolling(taskID string) {
	if a.cfg.Controller == nil {
		return
	}
	path := "/api/tasks/" + taskID + "/runs"
	a.cfg.Controller.Start(a.ctx, viewRuns,
		func(ctx context.Context) (record.Collection, error) {
			return a.cfg.Client.FetchCollection(ctx, path)
		},
		func(rows record.Collection) {
			plan := a.runs.SetRows(rows)
			a.publishRows(viewRuns, len(plan.Updates), len(plan.Inserts))
		},
		runsPollOptions(a.cfg.Config.ResourceInterval()),
	)
}

// runsPollOptions follows whatever run is newest. The newest run is an
// alias, not a fixed resource: a finished run can be superseded at any
// time, so the session must outlive terminal statuses.
func runsPollOptions(interval time.Duration) poll.Options {
	return poll.Options{
		Interval:    interval,
		StatusOf:    latestRunStatus,
		TrackLatest: true,
	}
}

func (a *App) startRunLogsPolling(runID string) {
	if a.cfg.Controller == nil {
		return
	}
	path := "/api/runs/" + runID + "/logs"
	a.cfg.Controller.Start(a.ctx, viewRunLogs,
		func(ctx context.Context) (record.Collection, error) {
			return a.cfg.Client.FetchCollection(ctx, path)
		},
		func(rows record.Collection) {
			plan := a.runLogs.SetRows(rows)
			a.publishRows(viewRunLogs, len(plan.Updates), len(plan.Inserts))
		},
		poll.Options{Interval: a.cfg.Config.ResourceInterval()},
	)
}

func (a *App) startNotifPolling() {
	if a.cfg.Controller == nil {
		return
	}
	a.cfg.Controller.Start(a.ctx, viewNotif,
		func(ctx context.Context) (record.Collection, error) {
			return a.cfg.Client.FetchCollection(ctx, "/api/notifications")
		},
		func(rows record.Collection) {
			plan := a.notif.SetRows(rows)
			a.publishRows(viewNotif, len(plan.Updates), len(plan.Inserts))
		},
		poll.Options{Interval: a.cfg.Config.CollectionInterval()},
	)
}

// startBadgePolling keeps the unsent-notification counter fresh on a
// fixed 5s cadence independent of which screen is open.
func (a *App) startBadgePolling() {
	if a.cfg.Controller == nil {
		return
	}
	a.cfg.Controller.Start(a.ctx, viewBadge,
		func(ctx context.Context) (record.Collection, error) {
			rec, err := a.cfg.Client.FetchOne(ctx, "/api/notifications/unsent-count")
			if err != nil {
				return nil, err
			}
			return record.Collection{rec}, nil
		},
		func(rows record.Collection) {
			if len(rows) == 0 {
				return
			}
			if n, err := strconv.ParseInt(rows[0].String("count"), 10, 64); err == nil {
				a.unsent.Store(n)
			}
		},
		poll.Options{Interval: badgeInterval},
	)
}

// latestRunStatus tracks the newest run; the session ends once that
// run settles.
func latestRunStatus(rows record.Collection) record.WorkStatus {
	if len(rows) == 0 {
		return record.StatusNone
	}
	return rows[0].Status()
}

func (a *App) publishRows(viewID record.ViewIdentity, updated, inserted int) {
	if a.cfg.Metrics != nil {
		if updated > 0 {
			a.cfg.Metrics.RowsUpdated.Add(a.ctx, int64(updated))
		}
		if inserted > 0 {
			a.cfg.Metrics.RowsInserted.Add(a.ctx, int64(inserted))
		}
	}
	if a.cfg.Bus == nil {
		return
	}
	a.cfg.Bus.Publish(bus.TopicRowsUpdated, bus.RowsUpdatedEvent{
		ViewID:   string(viewID),
		Updated:  updated,
		Inserted: inserted,
	})
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width, a.height = msg.Width, msg.Height
		return a, nil

	case busClosedMsg:
		return a, nil

	case busEventMsg:
		a.handleBusEvent(msg.ev)
		return a, waitForBusEvent(a.sub)

	case cleanupTickMsg:
		a.toasts.CleanupOld(10 * time.Minute)
		return a, cleanupTick()

	case allLogsLoadedMsg:
		if msg.err != nil {
			a.cfg.Sink.Notify(notify.SeverityError, fmt.Sprintf("loading logs failed: %v", msg.err))
			return a, nil
		}
		a.allLogs.SetRows(msg.rows)
		return a, nil

	case ConfirmResultMsg:
		return a, a.handleConfirmResult(msg)

	case TaskSubmittedMsg:
		return a, a.handleTaskSubmitted(msg)

	case FormCancelledMsg:
		return a, nil

	case mutationDoneMsg:
		a.handleMutationDone(msg)
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleBusEvent(ev bus.Event) {
	switch ev.Topic {
	case bus.TopicToast:
		if toast, ok := ev.Payload.(bus.ToastEvent); ok {
			a.toasts.Add(notify.Severity(toast.Severity), toast.Message)
		}
	case bus.TopicAuthExpired:
		// The event may come from any session, including background
		// ones; what matters for resuming is where the user is now.
		a.loginFrom = a.screenPath()
		a.screen = ScreenLogin
	case bus.TopicRowsUpdated, bus.TopicConfigReloaded:
		// Re-render only.
	}
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		a.quitting = true
		return a, tea.Quit
	}
	if a.confirm.IsOpen() {
		return a, a.confirm.Update(msg)
	}
	if a.form.IsOpen() {
		return a, a.form.Update(msg)
	}
	if a.screen == ScreenLogin {
		return a.handleLoginKey(msg)
	}

	table := a.currentTable()
	switch msg.String() {
	case "q":
		a.quitting = true
		return a, tea.Quit
	case "up", "k":
		table.MoveCursor(-1)
	case "down", "j":
		table.MoveCursor(1)
	case "left", "h":
		table.PrevPage()
	case "right", "l":
		table.NextPage()
	case "n":
		if a.screen == ScreenNotifications {
			a.closeNotifications()
		} else {
			a.openNotifications()
		}
	case "a":
		if a.screen == ScreenAllLogs {
			a.screen = ScreenTasks
		} else {
			// The all-task log is a one-shot snapshot; it never polls.
			a.screen = ScreenAllLogs
			return a, a.loadAllLogs()
		}
	case "r":
		if a.screen == ScreenAllLogs {
			return a, a.loadAllLogs()
		}
	case "c":
		if a.screen == ScreenTasks {
			a.form.Open()
		}
	case "e":
		if a.screen == ScreenTasks {
			if rec, ok := a.tasks.Selected(); ok {
				a.form.OpenEdit(rec.ID(), rec.String("name"), rec.String("command"), rec.String("schedule"))
			}
		}
	case "enter":
		switch a.screen {
		case ScreenTasks:
			if rec, ok := a.tasks.Selected(); ok && rec.ID() != "" {
				a.openRuns(rec.ID())
			}
		case ScreenRuns:
			if rec, ok := a.runs.Selected(); ok && rec.ID() != "" {
				a.openRunLogs(rec.ID())
			}
		}
	case "esc":
		switch a.screen {
		case ScreenRuns:
			a.closeRuns()
		case ScreenRunLogs:
			a.closeRunLogs()
		case ScreenNotifications:
			a.closeNotifications()
		case ScreenAllLogs:
			a.screen = ScreenTasks
		}
	case "d":
		if a.screen == ScreenTasks {
			if rec, ok := a.tasks.Selected(); ok && rec.ID() != "" {
				a.confirm.Open("delete:"+rec.ID(),
					fmt.Sprintf("Delete task %q? This cannot be undone.", rec.String("name")))
			}
		}
	case "s":
		return a, a.taskAction("start")
	case "x":
		return a, a.taskAction("stop")
	case " ":
		return a, a.taskAction("toggle")
	case "1", "2", "3", "4", "5", "6", "7", "8", "9":
		idx, _ := strconv.Atoi(msg.String())
		a.toggleColumn(table, idx-1)
	}
	return a, nil
}

func (a *App) handleLoginKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		a.quitting = true
		return a, tea.Quit
	case "enter":
		// Session renewed out of band; resume where the user was.
		a.cfg.Controller.Reset()
		a.startTasksPolling()
		a.startBadgePolling()
		if a.loginFrom == string(viewRuns) && a.runsTaskID != "" {
			a.startRunsPolling(a.runsTaskID)
			a.screen = ScreenRuns
		} else {
			a.screen = ScreenTasks
		}
	}
	return a, nil
}

// taskAction dispatches a registered command for the selected task,
// pessimistically marking the row until the server answers.
func (a *App) taskAction(name string) tea.Cmd {
	if a.screen != ScreenTasks {
		return nil
	}
	rec, ok := a.tasks.Selected()
	if !ok || rec.ID() == "" {
		return nil
	}
	if a.tasks.IsPending(rec.ID()) {
		return nil
	}
	if a.cfg.Registry != nil {
		if cmd, known := a.cfg.Registry.Lookup(name); known {
			a.tasks.MarkPending(rec.ID(), name)
			return func() tea.Msg {
				start := time.Now()
				res, err := cmd.Run(shared.WithTraceID(a.ctx, shared.NewTraceID()), rec)
				a.recordMutation(name, time.Since(start))
				return mutationDoneMsg{action: name, rowID: rec.ID(), res: res, err: err}
			}
		}
	}
	a.tasks.MarkPending(rec.ID(), name)
	return a.mutateCmd(name, rec.ID(), http.MethodPost, "/api/tasks/"+rec.ID()+"/"+name, nil)
}

func (a *App) mutateCmd(action, rowID, method, path string, payload any) tea.Cmd {
	return func() tea.Msg {
		ctx := shared.WithTraceID(a.ctx, shared.NewTraceID())
		start := time.Now()
		res, err := a.cfg.Client.Mutate(ctx, method, path, payload)
		a.recordMutation(action, time.Since(start))
		return mutationDoneMsg{action: action, rowID: rowID, res: res, err: err}
	}
}

func (a *App) recordMutation(action string, d time.Duration) {
	if a.cfg.Metrics == nil {
		return
	}
	a.cfg.Metrics.MutationDuration.Record(a.ctx, d.Seconds(),
		metric.WithAttributes(attribute.String("action", action)))
}

func (a *App) loadAllLogs() tea.Cmd {
	return func() tea.Msg {
		ctx := shared.WithTraceID(a.ctx, shared.NewTraceID())
		rows, err := a.cfg.Client.FetchCollection(ctx, "/api/logs")
		return allLogsLoadedMsg{rows: rows, err: err}
	}
}

func (a *App) handleConfirmResult(msg ConfirmResultMsg) tea.Cmd {
	action, id, ok := splitToken(msg.Token)
	if !ok || action != "delete" {
		return nil
	}
	if !msg.Accepted {
		return nil
	}
	a.tasks.MarkPending(id, "delete")
	return a.mutateCmd("delete", id, http.MethodDelete, "/api/tasks/"+id, nil)
}

func (a *App) handleTaskSubmitted(msg TaskSubmittedMsg) tea.Cmd {
	payload := map[string]any{
		"name":     msg.Name,
		"command":  msg.Command,
		"schedule": msg.Schedule,
	}
	if msg.ID == "" {
		return a.mutateCmd("create", "", http.MethodPost, "/api/tasks", payload)
	}
	a.tasks.MarkPending(msg.ID, "update")
	return a.mutateCmd("update", msg.ID, http.MethodPut, "/api/tasks/"+msg.ID, payload)
}

func (a *App) handleMutationDone(msg mutationDoneMsg) {
	if msg.err != nil {
		if msg.rowID != "" {
			a.tasks.ResolvePending(msg.rowID)
		}
		if errors.Is(msg.err, api.ErrAuthExpired) {
			a.cfg.Controller.StopAll()
			a.loginFrom = a.screenPath()
			a.screen = ScreenLogin
			return
		}
		a.cfg.Sink.Notify(notify.SeverityError, fmt.Sprintf("%s failed: %v", msg.action, msg.err))
		return
	}
	if !msg.res.OK {
		if msg.rowID != "" {
			a.tasks.ResolvePending(msg.rowID)
		}
		message := msg.res.Message
		if message == "" {
			message = msg.action + " was rejected"
		}
		a.cfg.Sink.Notify(notify.SeverityWarning, message)
		return
	}
	if msg.action == "delete" && msg.rowID != "" {
		a.tasks.RemoveRow(msg.rowID)
		if a.cfg.Metrics != nil {
			a.cfg.Metrics.RowsRemoved.Add(a.ctx, 1)
		}
	}
	// A response carrying records is the server's confirmation of the
	// new state; reconcile it in now. Otherwise the pending marker
	// stays until the next poll confirms.
	if len(msg.res.Records) > 0 {
		plan := a.tasks.SetRows(msg.res.Records)
		a.publishRows(viewTasks, len(plan.Updates), len(plan.Inserts))
	}
	message := msg.res.Message
	if message == "" {
		message = msg.action + " accepted"
	}
	a.cfg.Sink.Notify(notify.SeveritySuccess, message)
}

func (a *App) toggleColumn(table *TableView, idx int) {
	schema := table.Columns()
	if idx < 0 || idx >= len(schema) {
		return
	}
	table.ToggleColumn(schema[idx].DataSource)
	a.savePrefs(table)
}

func (a *App) savePrefs(table *TableView) {
	if a.cfg.Prefs == nil {
		return
	}
	st, err := a.cfg.Prefs.Load(a.ctx, table.ID())
	if err != nil {
		st = prefs.NewState()
	}
	st.ColumnsVisible = table.ColumnChoices()
	if err := a.cfg.Prefs.Save(a.ctx, table.ID(), st); err != nil {
		a.cfg.Logger.Warn("saving view preferences failed", "view_id", string(table.ID()), "error", err)
	}
}

func (a *App) openRuns(taskID string) {
	if taskID != a.runsTaskID {
		// A different task's runs are a fresh view, not an update of
		// the previous one.
		a.runs = a.freshTable(a.runs, "Runs", viewRuns, RunsSchema)
		a.runs.SetStatusField("status")
	}
	a.runsTaskID = taskID
	a.startRunsPolling(taskID)
	a.screen = ScreenRuns
}

func (a *App) closeRuns() {
	if a.cfg.Controller != nil {
		a.cfg.Controller.Stop(viewRuns)
	}
	a.screen = ScreenTasks
}

func (a *App) openRunLogs(runID string) {
	if runID != a.logsRunID {
		a.runLogs = a.freshTable(a.runLogs, "Run log", viewRunLogs, LogsSchema)
		a.runLogs.SetSort("id", false)
	}
	a.logsRunID = runID
	a.startRunLogsPolling(runID)
	a.screen = ScreenRunLogs
}

func (a *App) closeRunLogs() {
	if a.cfg.Controller != nil {
		a.cfg.Controller.Stop(viewRunLogs)
	}
	a.screen = ScreenRuns
}

func (a *App) openNotifications() {
	a.startNotifPolling()
	a.toasts.MarkSeen()
	a.screen = ScreenNotifications
}

func (a *App) closeNotifications() {
	if a.cfg.Controller != nil {
		a.cfg.Controller.Stop(viewNotif)
	}
	a.screen = ScreenTasks
}

// freshTable rebuilds a table for new backing data while keeping the
// user's column choices.
func (a *App) freshTable(old *TableView, title string, id record.ViewIdentity, schema record.Schema) *TableView {
	choices := old.ColumnChoices()
	tv := NewTableView(title, id, schema, a.cfg.Config.PageSize)
	st := prefs.NewState()
	st.ColumnsVisible = choices
	tv.ApplyPrefs(st)
	return tv
}

func (a *App) currentTable() *TableView {
	switch a.screen {
	case ScreenRuns:
		return a.runs
	case ScreenRunLogs:
		return a.runLogs
	case ScreenAllLogs:
		return a.allLogs
	case ScreenNotifications:
		return a.notif
	default:
		return a.tasks
	}
}

func (a *App) screenPath() string {
	switch a.screen {
	case ScreenRuns:
		return string(viewRuns)
	case ScreenRunLogs:
		return string(viewRunLogs)
	case ScreenAllLogs:
		return string(viewAllLogs)
	case ScreenNotifications:
		return string(viewNotif)
	default:
		return string(viewTasks)
	}
}

func (a *App) View() string {
	if a.quitting {
		return ""
	}
	if a.confirm.IsOpen() {
		return a.confirm.View()
	}
	if a.form.IsOpen() {
		return a.form.View()
	}

	var body string
	switch a.screen {
	case ScreenLogin:
		body = titleStyle.Render("Session expired") + "\n\n" +
			"Log in to the scheduler again, then press enter to resume.\n" +
			dimStyle.Render("returning to: "+a.loginFrom) + "\n"
	case ScreenNotifications:
		body = a.notif.View() + "\n" + titleStyle.Render("Toasts") + "\n" + a.toasts.View()
	default:
		body = a.currentTable().View()
	}
	return body + "\n" + a.footer()
}

func (a *App) footer() string {
	help := "q quit · enter open · c new · e edit · d delete · s start · x stop · space toggle · a logs · n notifications"
	if a.screen == ScreenLogin {
		help = "enter resume · q quit"
	}
	line := dimStyle.Render(help)
	if n := a.unsent.Load(); n > 0 {
		line += "  " + warnStyle.Render(fmt.Sprintf("✉ %d unsent", n))
	}
	if badge := a.toasts.Badge(); badge != "" {
		line += "  " + badge
	}
	return line
}

func splitToken(token string) (action, id string, ok bool) {
	for i := 0; i < len(token); i++ {
		if token[i] == ':' {
			return token[:i], token[i+1:], true
		}
	}
	return "", "", false
}
