package console

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/dynoquery/dynoquery/internal/catalog"
	"github.com/dynoquery/dynoquery/internal/generator"
	"github.com/dynoquery/dynoquery/internal/reports"
	"github.com/dynoquery/dynoquery/internal/sqlbuild"
	"github.com/dynoquery/dynoquery/internal/store"
	"github.com/dynoquery/dynoquery/pkg/models"
)

const menuText = `
Select an option:
 1. Display table names
 2. Display column names
 3. Add new record
 4. Update record
 5. Delete record
 6. Generate random data
 7. Multi-attribute search (join up to 2 tables)
 8. Run prepared reports
 9. Exit
`

const maxSearchFilters = 10

// App drives the interactive menu over the core components
type App struct {
	Console   *Console
	Catalog   *catalog.Catalog
	Store     *store.Store
	Generator *generator.Generator
	Reports   *reports.Runner
	Logger    *logrus.Logger
}

// Run executes the menu loop until the user exits or input closes
func (a *App) Run() error {
	a.Console.printf("%s\n", menuText)
	for {
		choice, err := a.Console.prompt("Enter option number: ")
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			return err
		}

		var actionErr error
		switch choice {
		case "1":
			actionErr = a.showTables()
		case "2":
			actionErr = a.showColumns()
		case "3":
			actionErr = a.addEntry()
		case "4":
			actionErr = a.updateEntry()
		case "5":
			actionErr = a.deleteEntry()
		case "6":
			actionErr = a.generateData()
		case "7":
			actionErr = a.search()
		case "8":
			actionErr = a.runReports()
		case "9":
			a.Console.println("Goodbye!")
			return nil
		default:
			a.Console.println("Incorrect input. Please try again.")
		}

		if errors.Is(actionErr, errQuit) {
			return nil
		}
		if actionErr != nil {
			a.Logger.Errorf("Menu action failed: %v", actionErr)
			a.Console.printf("An error occurred: %v\n", actionErr)
		}
	}
}

func (a *App) showTables() error {
	tables, err := a.Catalog.ListTables()
	if err != nil {
		return err
	}
	a.Logger.Debugf("Listed %d tables", len(tables))
	a.Console.println("\nTables:")
	for _, t := range tables {
		a.Console.println(" -", t)
	}
	return nil
}

func (a *App) showColumns() error {
	table, err := a.Console.promptNonEmpty("Enter table name: ")
	if err != nil {
		return err
	}
	cols, err := a.Catalog.Columns(table)
	if errors.Is(err, catalog.ErrTableNotFound) {
		a.Console.printf("Table '%s' not found.\n", table)
		return nil
	}
	if err != nil {
		return err
	}
	a.Console.printf("\nColumns in %s:\n", table)
	for _, col := range cols {
		a.Console.printf(" - %s (%s)\n", col.Name, col.NativeType)
	}
	return nil
}

func (a *App) addEntry() error {
	table, err := a.Console.promptNonEmpty("Enter table name: ")
	if err != nil {
		return err
	}
	cols, err := a.Catalog.Columns(table)
	if errors.Is(err, catalog.ErrTableNotFound) {
		a.Console.printf("Table '%s' not found.\n", table)
		return nil
	}
	if err != nil {
		return err
	}

	a.Console.println("Provide values for columns. Leave empty to skip (default/serial) or set NULL.")
	values := make(map[string]string)
	for _, col := range cols {
		v, err := a.Console.prompt(fmt.Sprintf("%s (%s): ", col.Name, col.NativeType))
		if err != nil {
			return err
		}
		if v == "" {
			continue
		}
		values[col.Name] = v
	}

	if err := a.Store.Insert(table, values); err != nil {
		if errors.Is(err, sqlbuild.ErrNoInsertableColumns) {
			a.Console.println("No columns to insert.")
			return nil
		}
		return err
	}
	a.Console.println("Data successfully added.")
	return nil
}

func (a *App) updateEntry() error {
	table, err := a.Console.promptNonEmpty("Table name: ")
	if err != nil {
		return err
	}
	column, err := a.Console.promptNonEmpty(fmt.Sprintf("Column name in %s: ", table))
	if err != nil {
		return err
	}
	rowID, err := a.Console.promptNonEmpty(fmt.Sprintf("%s primary key value (ID): ", table))
	if err != nil {
		return err
	}
	value, err := a.Console.prompt(fmt.Sprintf("Enter new value for %s: ", column))
	if err != nil {
		return err
	}

	affected, err := a.Store.Update(table, column, rowID, value)
	switch {
	case errors.Is(err, catalog.ErrTableNotFound), errors.Is(err, catalog.ErrColumnNotFound):
		a.Console.println("Table/column not found.")
		return nil
	case errors.Is(err, sqlbuild.ErrPrimaryKeyMissing):
		a.Console.printf("Table '%s' has no primary key, cannot update by ID.\n", table)
		return nil
	case err != nil:
		return err
	case affected == 0:
		a.Console.println("No rows updated (check ID).")
	default:
		a.Console.println("Data successfully updated.")
	}
	return nil
}

func (a *App) deleteEntry() error {
	table, err := a.Console.promptNonEmpty("Enter table name: ")
	if err != nil {
		return err
	}
	rowID, err := a.Console.promptNonEmpty(fmt.Sprintf("Enter %s primary key value (ID): ", table))
	if err != nil {
		return err
	}

	children, err := a.Store.ChildWarnings(table)
	if err != nil {
		return err
	}
	if len(children) > 0 {
		a.Console.printf("Warning: there are child tables referencing %s: %v\n", table, children)
		ok, err := a.Console.confirm(fmt.Sprintf("Do you really want to delete %s row %s? This may cascade or fail. (yes/no): ", table, rowID))
		if err != nil {
			return err
		}
		if !ok {
			a.Console.println("Delete cancelled.")
			return nil
		}
	}

	affected, err := a.Store.Delete(table, rowID)
	switch {
	case errors.Is(err, sqlbuild.ErrPrimaryKeyMissing):
		a.Console.printf("Table '%s' has no primary key, cannot delete by ID.\n", table)
		return nil
	case err != nil:
		return err
	case affected == 0:
		a.Console.println("No rows deleted (check ID).")
	default:
		a.Console.println("Data successfully deleted.")
	}
	return nil
}

func (a *App) generateData() error {
	table, err := a.Console.promptNonEmpty("Enter table name: ")
	if err != nil {
		return err
	}
	count, err := a.Console.promptIntRange("Enter number of rows to generate: ", 1, 1000000)
	if err != nil {
		return err
	}

	start := time.Now()
	inserted, err := a.Generator.Generate(table, count)
	if errors.Is(err, catalog.ErrTableNotFound) {
		a.Console.printf("Table '%s' not found.\n", table)
		return nil
	}
	if errors.Is(err, sqlbuild.ErrNoInsertableColumns) {
		a.Console.println("No columns to generate (all are PK/DEFAULT).")
		return nil
	}
	if err != nil {
		return err
	}
	a.Console.printf("Inserted %d rows into '%s' in %d ms.\n", inserted, table, time.Since(start).Milliseconds())
	return nil
}

func (a *App) search() error {
	a.Console.println("Multi-attribute search. You may provide filters for attributes across two tables.")

	primary, err := a.Console.promptNonEmpty("Enter primary table name: ")
	if err != nil {
		return err
	}
	if exists, err := a.Catalog.TableExists(primary); err != nil {
		return err
	} else if !exists {
		a.Console.printf("Table '%s' does not exist.\n", primary)
		return nil
	}

	secondary, err := a.Console.prompt("Enter secondary table name to JOIN (or press Enter to skip): ")
	if err != nil {
		return err
	}
	if secondary != "" {
		if exists, err := a.Catalog.TableExists(secondary); err != nil {
			return err
		} else if !exists {
			a.Console.printf("Table '%s' does not exist. Aborting.\n", secondary)
			return nil
		}
	}

	searchTables := []string{primary}
	columnsByTable := map[string]models.ColumnTypeMap{}
	if cols, err := a.Catalog.Columns(primary); err != nil {
		return err
	} else {
		columnsByTable[primary] = cols
	}
	if secondary != "" {
		searchTables = append(searchTables, secondary)
		cols, err := a.Catalog.Columns(secondary)
		if err != nil {
			return err
		}
		columnsByTable[secondary] = cols
	}

	numFilters, err := a.Console.promptIntRange(
		fmt.Sprintf("How many attribute filters do you want to apply? (0-%d): ", maxSearchFilters),
		0, maxSearchFilters)
	if err != nil {
		return err
	}

	var predicates []string
	for i := 0; i < numFilters; i++ {
		tbl := primary
		if len(searchTables) > 1 {
			a.Console.println("Available tables for filter:")
			tbl, err = a.Console.choose("Choose table number: ", searchTables)
			if err != nil {
				return err
			}
		}

		cols := columnsByTable[tbl]
		a.Console.printf("Columns in %s:\n", tbl)
		names := make([]string, len(cols))
		for j, col := range cols {
			names[j] = fmt.Sprintf("%s (%s)", col.Name, col.NativeType)
		}
		picked, err := a.Console.choose("Choose column number: ", names)
		if err != nil {
			return err
		}
		var col models.Column
		for j, label := range names {
			if label == picked {
				col = cols[j]
				break
			}
		}

		filter, err := a.promptFilter(col)
		if err != nil {
			return err
		}
		predicates = append(predicates, sqlbuild.BuildPredicate(tbl, col.Name, col.Category, filter))
	}

	start := time.Now()
	result, joined, err := a.Store.Search(store.SearchRequest{
		Table:      primary,
		JoinTable:  secondary,
		Predicates: predicates,
	})
	if err != nil {
		return err
	}
	if secondary != "" && !joined {
		a.Console.println("No foreign key relation found between chosen tables. Results are a CROSS JOIN.")
	}
	a.Console.renderResult(result)
	a.Console.printf("Query executed in %d ms.\n", time.Since(start).Milliseconds())
	return nil
}

// promptFilter asks the type-appropriate filter questions for one column
func (a *App) promptFilter(col models.Column) (sqlbuild.Filter, error) {
	var f sqlbuild.Filter
	var err error

	switch col.Category {
	case models.Integer, models.Decimal:
		if f.Lower, err = a.Console.prompt("Enter lower bound (or press Enter to skip): "); err != nil {
			return f, err
		}
		f.Upper, err = a.Console.prompt("Enter upper bound (or press Enter to skip): ")
	case models.Text:
		f.Pattern, err = a.Console.prompt("Enter pattern (SQL LIKE, use % as wildcard, e.g. Ann%): ")
	case models.Boolean:
		f.Value, err = a.Console.prompt("Enter boolean (true/false): ")
	case models.Temporal:
		if f.Lower, err = a.Console.prompt("Start date/time (ISO format, or press Enter to skip): "); err != nil {
			return f, err
		}
		f.Upper, err = a.Console.prompt("End date/time (ISO format, or press Enter to skip): ")
	default:
		f.Value, err = a.Console.prompt(fmt.Sprintf("Enter value to match for %s: ", col.Name))
	}
	return f, err
}

func (a *App) runReports() error {
	templates := reports.Catalog()
	a.Console.println("Prepared reports:")
	titles := make([]string, len(templates))
	for i, t := range templates {
		titles[i] = t.Title
	}
	picked, err := a.Console.choose("Choose report number: ", titles)
	if err != nil {
		return err
	}

	var tmpl models.ReportTemplate
	for i, title := range titles {
		if title == picked {
			tmpl = templates[i]
			break
		}
	}

	params := make([]interface{}, 0, tmpl.ParamCount())
	for i := 0; i < tmpl.ParamCount(); i++ {
		raw, err := a.Console.prompt(fmt.Sprintf("Enter value for parameter %d: ", i+1))
		if err != nil {
			return err
		}
		params = append(params, parseParam(raw))
	}

	start := time.Now()
	result, err := a.Reports.Run(tmpl, params)
	if err != nil {
		return err
	}
	a.Console.renderResult(result)
	a.Console.printf("Report '%s' executed in %d ms.\n", tmpl.Title, time.Since(start).Milliseconds())
	return nil
}
