// Package hdf5 records leaderswarm trajectories to HDF5 files and reads them back.
package hdf5

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"time"

	"github.com/PrincetonUniversity/leaderswarm"
	"gonum.org/v1/hdf5"
)

// A Dataset stipulates how to generate data and where to store them in the HDF5 file.
type Dataset struct {
	// Name the name of the dataset in the HDF5 file.
	Name string

	// Val is a value of the same concrete type as the underlying type of the data.
	Val interface{}

	// Dims are the dimensions of the data for a single step.
	Dims []int

	// Data is a function that produces the data
	// as a pointer to a slice of row-major concrete values.
	Data func(s *leaderswarm.Simulation) interface{}

	dset   *hdf5.Dataset
	fspace *hdf5.Dataspace
	mspace *hdf5.Dataspace
}

// Config holds the parameters of the HDF5 driver.
type Config struct {
	Output   string       // path of output file
	Steps    int          // total number of recorded frames
	Step     func() error // go to next frame
	RunID    string       // identifier stored with the data
	Datasets []*Dataset   // list of datasets

	// Attrs are stored as attributes of the "config" dataset.
	// It must be a pointer to a struct or nil. Numeric, string and bool
	// fields are stored, bools as int8; other fields are skipped.
	Attrs interface{}

	// Progress receives a percentage counter when non-nil.
	Progress io.Writer
}

// A Frame is what is recorded in the HDF5 file for each agent at each step.
// This structure is mapped to a compound datatype in HDF5 so member names are important.
type Frame struct {
	Pos      leaderswarm.Vec3 // position
	Vel      leaderswarm.Vec3 // velocity
	Role     int32            // 0 for followers, 1 for leaders
	WingBeat float64          // flapping speed multiplier
}

// NewFrame converts an agent view to its recorded form.
func NewFrame(a leaderswarm.AgentState) Frame {
	return Frame{
		Pos:      a.Position,
		Vel:      a.Velocity,
		Role:     int32(a.Role),
		WingBeat: a.WingBeat,
	}
}

// AgentsDataset records every agent of a flock of the given size in a dataset named "agents".
func AgentsDataset(size int) *Dataset {
	return &Dataset{
		Name: "agents",
		Val:  Frame{},
		Dims: []int{size},
		Data: func(s *leaderswarm.Simulation) interface{} {
			f := make([]Frame, s.Len())
			for i := range f {
				f[i] = NewFrame(s.AgentState(i))
			}
			return &f
		},
	}
}

// TimeDataset records the simulated time of every frame in a dataset named "time".
func TimeDataset() *Dataset {
	return &Dataset{
		Name: "time",
		Val:  0.0,
		Data: func(s *leaderswarm.Simulation) interface{} {
			t := s.Time()
			return &t
		},
	}
}

// Run runs a simulation and saves data to an HDF5 file.
// Frame k holds the state before the k-th call to conf.Step.
func Run(s *leaderswarm.Simulation, conf *Config) (err error) {
	if err := os.MkdirAll(filepath.Dir(conf.Output), 0755); err != nil {
		return err
	}

	file, err := hdf5.CreateFile(conf.Output, hdf5.F_ACC_TRUNC)
	if err != nil {
		return err
	}
	defer checkClose(&err, file)

	if err := saveConfig(file, conf); err != nil {
		return err
	}

	for _, d := range conf.Datasets {
		if err := d.init(file, conf); err != nil {
			return fmt.Errorf("dataset %q: %w", d.Name, err)
		}
		defer checkClose(&err, d)
	}

	for k := uint(0); k < uint(conf.Steps); k++ {
		if conf.Progress != nil {
			fmt.Fprintf(conf.Progress, "\r% 3d%%", 100*k/uint(conf.Steps))
		}

		for _, d := range conf.Datasets {
			start := make([]uint, len(d.Dims)+1)
			start[0] = k
			if err := d.fspace.SetOffset(start); err != nil {
				return err
			}
			if err := d.dset.WriteSubset(d.Data(s), d.mspace, d.fspace); err != nil {
				return fmt.Errorf("dataset %q, frame %d: %w", d.Name, k, err)
			}
		}

		if err := conf.Step(); err != nil {
			return err
		}
	}
	if conf.Progress != nil {
		fmt.Fprintf(conf.Progress, "\r100%%\n")
	}
	return nil
}

// saveConfig creates a "config" dataset with a null dataspace whose attributes
// reflect the whole configuration plus some other appropriate metadata.
func saveConfig(file *hdf5.File, conf *Config) (err error) {
	null, err := hdf5.CreateDataspace(hdf5.S_NULL)
	if err != nil {
		return err
	}
	defer checkClose(&err, null)

	anytype, err := hdf5.NewDatatypeFromValue(0)
	if err != nil {
		return err
	}
	defer checkClose(&err, anytype)

	dset, err := file.CreateDataset("config", anytype, null)
	if err != nil {
		return err
	}
	defer checkClose(&err, dset)

	scalar, err := hdf5.CreateDataspace(hdf5.S_SCALAR)
	if err != nil {
		return err
	}
	defer checkClose(&err, scalar)

	now := time.Now().String()
	if err := writeAttr(dset, scalar, "Time", &now); err != nil {
		return err
	}
	if err := writeAttr(dset, scalar, "RunID", &conf.RunID); err != nil {
		return err
	}

	if conf.Attrs == nil {
		return nil
	}
	v := reflect.ValueOf(conf.Attrs).Elem()
	for i := 0; i < v.NumField(); i++ {
		f := v.Field(i)
		ptr := f.Addr().Interface()
		switch f.Kind() {
		case reflect.Int, reflect.Int64, reflect.Uint64, reflect.Float64, reflect.String:
		case reflect.Bool:
			// stored as 0 or 1
			var b int8
			if f.Bool() {
				b = 1
			}
			ptr = &b
		default:
			continue // only scalars are stored
		}
		if err := writeAttr(dset, scalar, v.Type().Field(i).Name, ptr); err != nil {
			return err
		}
	}
	return nil
}

// writeAttr writes the scalar pointed to by ptr as an attribute of dset.
func writeAttr(dset *hdf5.Dataset, space *hdf5.Dataspace, name string, ptr interface{}) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(reflect.ValueOf(ptr).Elem().Interface())
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	attr, err := dset.CreateAttribute(name, dtype, space)
	if err != nil {
		return err
	}
	defer checkClose(&err, attr)

	return attr.Write(ptr, dtype)
}

// init creates the dataset and the dataspaces used to write one frame at a time.
func (d *Dataset) init(file *hdf5.File, conf *Config) (err error) {
	dtype, err := hdf5.NewDatatypeFromValue(d.Val)
	if err != nil {
		return err
	}
	defer checkClose(&err, dtype)

	udims := make([]uint, len(d.Dims)+1)
	udims[0] = uint(conf.Steps)
	for i, n := range d.Dims {
		udims[i+1] = uint(n)
	}

	d.fspace, err = hdf5.CreateSimpleDataspace(udims, nil)
	if err != nil {
		return err
	}

	start := make([]uint, len(udims))
	count := make([]uint, len(udims))
	copy(count, udims)
	count[0] = 1

	if err := d.fspace.SelectHyperslab(start, nil, count, nil); err != nil {
		checkClose(&err, d.fspace)
		return err
	}

	if len(d.Dims) == 0 {
		d.mspace, err = hdf5.CreateDataspace(hdf5.S_SCALAR)
	} else {
		d.mspace, err = hdf5.CreateSimpleDataspace(udims[1:], nil)
	}
	if err != nil {
		checkClose(&err, d.fspace)
		return err
	}

	d.dset, err = file.CreateDataset(d.Name, dtype, d.fspace)
	if err != nil {
		checkClose(&err, d.fspace)
		checkClose(&err, d.mspace)
	}

	return err
}

// Close closes the HDF5 dataset and Dataspaces.
func (d *Dataset) Close() error {
	if err := d.dset.Close(); err != nil {
		return err
	}
	if err := d.mspace.Close(); err != nil {
		return err
	}
	if err := d.fspace.Close(); err != nil {
		return err
	}
	return nil
}

// checkClose checks for errors in deferred calls.
func checkClose(err *error, c io.Closer) {
	if cerr := c.Close(); *err == nil {
		*err = cerr
	}
}
